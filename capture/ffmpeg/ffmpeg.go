// Package ffmpeg captures images from video4linux devices with ffmpeg.
package ffmpeg

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/capture"
)

const installHint = "sudo apt install -y ffmpeg v4l-utils"

// ListDevices returns a list of devices that can be used for recording.
// ListDevices returns capture.ErrNoDevices if no devices are available.
func ListDevices() ([]capture.Device, error) {
	cmd := exec.Command("v4l2-ctl", "--list-devices")
	buf, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, errors.Wrapf(vmb.StatusNoTL, "v4l2-ctl not found, install with: %s", installHint)
		}
		return nil, errors.Wrap(err, "listing devices using v4l2-ctl")
	}
	return parseDevices(string(buf))
}

func parseDevices(s string) ([]capture.Device, error) {
	var curDevice string
	devices := []capture.Device{}
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "\t") {
			curDevice = strings.TrimSpace(line)
			continue
		}
		// The Raspberry Pi codec and ISP nodes are not cameras.
		if curDevice == "" || strings.HasPrefix(curDevice, "bcm2835-") {
			continue
		}

		line = strings.TrimSpace(line)
		devices = append(devices, capture.Device{
			Name: fmt.Sprintf("%s (%s)", curDevice, line),
			ID:   line,
		})
	}
	if len(devices) == 0 {
		return nil, capture.ErrNoDevices
	}
	return devices, nil
}

// Args returns the ffmpeg arguments that copy the MJPEG stream of
// opts.DeviceID into numbered JPEG files.
func Args(opts capture.RecorderOpts) []string {
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second / 30
	}
	framerate := int(time.Second / interval)
	if framerate < 1 {
		framerate = 1
	}
	return []string{
		"-framerate", fmt.Sprintf("%d", framerate),
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-c:v", "mjpeg",
		"-i", opts.DeviceID,
		"-f", "image2",
		"-c:v", "copy",
		"-bsf:v", "mjpeg2jpeg",
		"-qscale:v", "2",
		"frame%d.jpg",
	}
}

// NewRecorder starts ffmpeg. Ffmpeg writes images to a temporary directory.
// These files are read and sent over the channel returned by Events.
//
// Callers must call Close to clean up.
func NewRecorder(opts capture.RecorderOpts) (*capture.ToolRecorder, error) {
	if opts.DeviceID == "" {
		devs, err := ListDevices()
		if err != nil {
			return nil, errors.Wrap(err, "listing devices")
		}
		opts.DeviceID = devs[0].ID
	}
	return capture.StartTool(capture.ToolOpts{
		Command:     "ffmpeg",
		Args:        func(string) []string { return Args(opts) },
		Op:          fsnotify.Write,
		Interval:    opts.Interval,
		InstallHint: installHint,
		Verbose:     opts.Verbose,
	})
}
