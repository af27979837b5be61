// Package imagesnap captures images with the imagesnap command for macOS.
package imagesnap

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/vmbkit/vmb-go/capture"
)

// ListDevices returns all image capturing devices available to imagesnap.
// ListDevices returns capture.ErrNoDevices if no devices are available.
func ListDevices() ([]capture.Device, error) {
	cmd := exec.Command("imagesnap", "-l")
	buf, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "listing devices with imagesnap -l")
	}
	return parseDevices(string(buf))
}

func parseDevices(s string) ([]capture.Device, error) {
	devs := []capture.Device{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "=> ") {
			// Newer format, example: "=> FaceTime HD Camera (Built-in)"
			name := line[len("=> "):]
			devs = append(devs, capture.Device{Name: name, ID: name})
		} else if strings.HasPrefix(line, "<") {
			// Older format, example: "<AVCaptureDALDevice: 0x7fa2c7852fd0 [FaceTime HD Camera (Built-in)][0x8020000005ac8514]>"
			t := strings.Split(line, "[")
			if len(t) < 2 {
				continue
			}
			name := strings.Split(t[1], "]")[0]
			devs = append(devs, capture.Device{Name: name, ID: name})
		}
	}
	if len(devs) == 0 {
		return nil, capture.ErrNoDevices
	}
	return devs, nil
}

// Args returns the imagesnap arguments for opts. imagesnap only knows the
// interval, images are written in the geometry of the device.
func Args(opts capture.RecorderOpts) []string {
	return []string{
		"-d", opts.DeviceID,
		"-t", fmt.Sprintf("%.2f", opts.Interval.Seconds()),
	}
}

// NewRecorder starts imagesnap, making it write images to a temporary
// directory. These images are read and sent on the channel returned by
// Events.
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
		Command:  "imagesnap",
		Args:     func(string) []string { return Args(opts) },
		Op:       fsnotify.Create,
		Interval: opts.Interval,
		Verbose:  opts.Verbose,
	})
}
