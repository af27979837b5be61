// Package gstreamer captures images with the gstreamer tools.
package gstreamer

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/capture"
)

const installHint = "sudo apt install -y gstreamer1.0-tools gstreamer1.0-plugins-good gstreamer1.0-plugins-base gstreamer1.0-plugins-base-apps"

type device struct {
	ID          string
	Name        string
	DeviceClass string
	RawCaps     []string
	Caps        []capture.DeviceCap
	inCapMode   bool
}

var widthRegexp = regexp.MustCompile("width=([0-9]+)[^0-9]")
var heightRegexp = regexp.MustCompile("height=([0-9]+)[^0-9]")
var framerateRegexp = regexp.MustCompile("framerate=([0-9]+)[^0-9]")

// ListDevices returns a list of devices that can be used for recording, with
// their raw video capabilities sorted by closeness to 640x480.
// ListDevices returns capture.ErrNoDevices if no devices are available.
func ListDevices() ([]capture.Device, error) {
	cmd := exec.Command("gst-device-monitor-1.0")
	buf, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, errors.Wrapf(vmb.StatusNoTL, "gst-device-monitor-1.0 not found, install with: %s", installHint)
		}
		return nil, errors.Wrap(err, "listing devices using gst-device-monitor-1.0")
	}
	return parseDevices(buf)
}

func parseDevices(buf []byte) ([]capture.Device, error) {
	var r []device
	var d *device
	b := bufio.NewScanner(bytes.NewReader(buf))
	for b.Scan() {
		s := strings.TrimSpace(b.Text())
		if s == "" {
			continue
		}
		if s == "Device found:" {
			if d != nil {
				r = append(r, *d)
			}
			d = &device{RawCaps: []string{}, Caps: []capture.DeviceCap{}}
			continue
		}

		if d == nil {
			continue
		}

		if strings.HasPrefix(s, "name  :") {
			d.Name = strings.TrimSpace(strings.SplitN(s, ":", 2)[1])
			continue
		}
		if strings.HasPrefix(s, "class :") {
			d.DeviceClass = strings.TrimSpace(strings.SplitN(s, ":", 2)[1])
			continue
		}
		if strings.HasPrefix(s, "caps  :") {
			cap := strings.TrimSpace(strings.SplitN(s, ":", 2)[1])
			d.RawCaps = append(d.RawCaps, cap)
			d.inCapMode = true
			continue
		}
		if strings.HasPrefix(s, "properties:") {
			d.inCapMode = false
			continue
		}
		if d.inCapMode {
			d.RawCaps = append(d.RawCaps, s)
		}
		if strings.HasPrefix(s, "device.path =") {
			d.ID = strings.TrimSpace(strings.SplitN(s, "=", 2)[1])
		}
	}
	if err := b.Err(); err != nil {
		return nil, err
	}

	if d != nil && d.ID != "" {
		r = append(r, *d)
	}

	var devs []capture.Device
	for _, d := range r {
		if d.DeviceClass != "Video/Source" {
			continue
		}
		for _, rc := range d.RawCaps {
			if !strings.HasPrefix(rc, "video/x-raw") {
				continue
			}
			mw := widthRegexp.FindStringSubmatch(rc)
			mh := heightRegexp.FindStringSubmatch(rc)
			mf := framerateRegexp.FindStringSubmatch(rc)
			if mw == nil || mh == nil || mf == nil {
				continue
			}
			width, werr := strconv.ParseInt(mw[1], 10, 32)
			height, herr := strconv.ParseInt(mh[1], 10, 32)
			framerate, ferr := strconv.ParseInt(mf[1], 10, 32)
			if werr != nil || herr != nil || ferr != nil {
				continue
			}
			if width != 0 && height != 0 && framerate != 0 {
				d.Caps = append(d.Caps, capture.DeviceCap{
					Type:      "video/x-raw",
					Width:     int(width),
					Height:    int(height),
					Framerate: int(framerate),
				})
			}
		}
		if len(d.Caps) == 0 {
			continue
		}

		sort.SliceStable(d.Caps, func(i, j int) bool {
			return capture.Distance(d.Caps[i], 640, 480) < capture.Distance(d.Caps[j], 640, 480)
		})

		devs = append(devs, capture.Device{
			ID:   d.ID,
			Name: d.Name,
			Caps: d.Caps,
		})
	}
	if len(devs) == 0 {
		return nil, capture.ErrNoDevices
	}

	return devs, nil
}

// Args returns the gst-launch-1.0 pipeline that captures from dev in its raw
// geometry closest to the requested one, and writes JPEG files into dir.
func Args(dev capture.Device, opts capture.RecorderOpts, dir string) []string {
	c, ok := capture.ClosestCap(dev.Caps, opts.Width, opts.Height)
	if !ok || opts.Width <= 0 || opts.Height <= 0 {
		c, ok = capture.ClosestCap(dev.Caps, 640, 480)
	}
	if !ok {
		c = capture.DeviceCap{Width: 640, Height: 480}
	}
	return []string{
		"v4l2src",
		"device=" + dev.ID,
		"!",
		fmt.Sprintf("video/x-raw,width=%d,height=%d", c.Width, c.Height),
		"!",
		"videoconvert",
		"!",
		"jpegenc",
		"!",
		"multifilesink",
		"location=" + dir + "/frame%05d.jpg",
	}
}

// NewRecorder starts gst-launch-1.0 capturing from opts.DeviceID. Gstreamer
// writes images to a temporary directory. These files are read and sent over
// the channel returned by Events.
//
// Callers must call Close to clean up.
func NewRecorder(opts capture.RecorderOpts) (*capture.ToolRecorder, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, errors.Wrap(err, "listing devices")
	}
	var dev capture.Device
	if opts.DeviceID == "" {
		dev = devices[0]
	} else {
		for _, d := range devices {
			if d.ID == opts.DeviceID {
				dev = d
				break
			}
		}
		if dev.ID == "" {
			return nil, errors.Wrapf(vmb.StatusNotFound, "device %q", opts.DeviceID)
		}
	}

	return capture.StartTool(capture.ToolOpts{
		Command:     "gst-launch-1.0",
		Args:        func(dir string) []string { return Args(dev, opts, dir) },
		Interval:    opts.Interval,
		InstallHint: installHint,
		Verbose:     opts.Verbose,
	})
}
