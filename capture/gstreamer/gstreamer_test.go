package gstreamer

import (
	"reflect"
	"testing"

	"github.com/vmbkit/vmb-go/capture"
)

const monitorOutput = `Probing devices...


Device found:

	name  : HD Pro Webcam C920
	class : Video/Source
	caps  : video/x-raw, format=YUY2, width=1920, height=1080, pixel-aspect-ratio=1/1, framerate=5/1;
	        video/x-raw, format=YUY2, width=640, height=480, pixel-aspect-ratio=1/1, framerate=30/1;
	        video/x-raw, format=YUY2, width=1280, height=720, pixel-aspect-ratio=1/1, framerate=10/1;
	        image/jpeg, width=1920, height=1080, pixel-aspect-ratio=1/1, framerate=30/1;
	properties:
		udev-probed = true
		device.bus_path = platform-3f980000.usb-usb-0:1.3:1.0
		device.path = /dev/video0
	gst-launch-1.0 v4l2src ! ...


Device found:

	name  : Built-in Audio
	class : Audio/Source
	caps  : audio/x-raw, format={ S16LE, S32LE }, layout=interleaved, rate=[ 1, 384000 ], channels=[ 1, 32 ];
	properties:
		device.path = hw:0
`

func TestParseDevices(t *testing.T) {
	devs, err := parseDevices([]byte(monitorOutput))
	if err != nil {
		t.Fatalf("parsing gst-device-monitor output: %v", err)
	}
	exp := []capture.Device{
		{
			ID:   "/dev/video0",
			Name: "HD Pro Webcam C920",
			Caps: []capture.DeviceCap{
				{Type: "video/x-raw", Width: 640, Height: 480, Framerate: 30},
				{Type: "video/x-raw", Width: 1280, Height: 720, Framerate: 10},
				{Type: "video/x-raw", Width: 1920, Height: 1080, Framerate: 5},
			},
		},
	}
	if !reflect.DeepEqual(devs, exp) {
		t.Fatalf("gstreamer devices, got %v, expected %v", devs, exp)
	}

	if _, err := parseDevices([]byte("Probing devices...\n")); err != capture.ErrNoDevices {
		t.Fatalf("parsing empty monitor output, got %v, expected %v", err, capture.ErrNoDevices)
	}
}

func TestArgs(t *testing.T) {
	devs, err := parseDevices([]byte(monitorOutput))
	if err != nil {
		t.Fatalf("parsing gst-device-monitor output: %v", err)
	}
	args := Args(devs[0], capture.RecorderOpts{Width: 1280, Height: 718}, "/tmp/x")
	exp := []string{
		"v4l2src", "device=/dev/video0",
		"!", "video/x-raw,width=1280,height=720",
		"!", "videoconvert",
		"!", "jpegenc",
		"!", "multifilesink", "location=/tmp/x/frame%05d.jpg",
	}
	if !reflect.DeepEqual(args, exp) {
		t.Fatalf("gstreamer args, got %v, expected %v", args, exp)
	}

	args = Args(capture.Device{ID: "/dev/video2"}, capture.RecorderOpts{}, "/tmp/x")
	if args[3] != "video/x-raw,width=640,height=480" {
		t.Fatalf("gstreamer default caps, got %s", args[3])
	}
}
