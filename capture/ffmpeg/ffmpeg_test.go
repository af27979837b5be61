package ffmpeg

import (
	"reflect"
	"testing"
	"time"

	"github.com/vmbkit/vmb-go/capture"
)

func TestParseDevices(t *testing.T) {
	const v4l2 = "bcm2835-codec-decode (platform:bcm2835-codec):\n" +
		"\t/dev/video10\n" +
		"\t/dev/video11\n" +
		"\n" +
		"HD Pro Webcam C920 (usb-3f980000.usb-1.3):\n" +
		"\t/dev/video0\n" +
		"\t/dev/video1\n" +
		"\t/dev/media3\n"

	devs, err := parseDevices(v4l2)
	if err != nil {
		t.Fatalf("parsing v4l2-ctl output: %v", err)
	}
	exp := []capture.Device{
		{Name: "HD Pro Webcam C920 (usb-3f980000.usb-1.3): (/dev/video0)", ID: "/dev/video0"},
		{Name: "HD Pro Webcam C920 (usb-3f980000.usb-1.3): (/dev/video1)", ID: "/dev/video1"},
		{Name: "HD Pro Webcam C920 (usb-3f980000.usb-1.3): (/dev/media3)", ID: "/dev/media3"},
	}
	if !reflect.DeepEqual(devs, exp) {
		t.Fatalf("v4l2 devices, got %v, expected %v", devs, exp)
	}

	if _, err := parseDevices("bcm2835-isp (platform:bcm2835-isp):\n\t/dev/video13\n"); err != capture.ErrNoDevices {
		t.Fatalf("parsing device list without cameras, got %v, expected %v", err, capture.ErrNoDevices)
	}
}

func TestArgs(t *testing.T) {
	args := Args(capture.RecorderOpts{DeviceID: "/dev/video0", Interval: 100 * time.Millisecond, Width: 1280, Height: 720})
	exp := []string{
		"-framerate", "10",
		"-video_size", "1280x720",
		"-c:v", "mjpeg",
		"-i", "/dev/video0",
		"-f", "image2",
		"-c:v", "copy",
		"-bsf:v", "mjpeg2jpeg",
		"-qscale:v", "2",
		"frame%d.jpg",
	}
	if !reflect.DeepEqual(args, exp) {
		t.Fatalf("ffmpeg args, got %v, expected %v", args, exp)
	}

	args = Args(capture.RecorderOpts{DeviceID: "/dev/video0"})
	if args[1] != "30" || args[3] != "640x480" {
		t.Fatalf("ffmpeg default framerate and size, got %s and %s", args[1], args[3])
	}
}
