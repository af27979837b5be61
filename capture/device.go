// Package capture runs external capture tools that write JPEG images to a
// directory, and turns the written images into a stream of decoded images.
// The subpackages gstreamer, ffmpeg and imagesnap list devices and build the
// command lines of the individual tools.
package capture

import (
	"errors"
)

// ErrNoDevices is returned by ListDevices of a tool when it runs but finds no
// usable device.
var ErrNoDevices = errors.New("no devices available")

// DeviceCap describes a capability of a device.
type DeviceCap struct {
	Type      string // "video/x-raw", "image/jpeg" or "nvarguscamerasrc"
	Width     int
	Height    int
	Framerate int
}

// Device is a camera device a tool can capture images from.
type Device struct {
	Name string
	ID   string
	Caps []DeviceCap
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// Distance returns how far the geometry of c is from width x height. The area
// difference dominates, ties are broken by the sum of the side differences.
func Distance(c DeviceCap, width, height int) int {
	dw, dh := abs(c.Width-width), abs(c.Height-height)
	return dw*dh + dw + dh
}

// ClosestCap returns the first capability with the smallest Distance to
// width x height. ok is false if caps is empty.
func ClosestCap(caps []DeviceCap, width, height int) (c DeviceCap, ok bool) {
	for i, dc := range caps {
		if i == 0 || Distance(dc, width, height) < Distance(c, width, height) {
			c = dc
		}
	}
	return c, len(caps) > 0
}
