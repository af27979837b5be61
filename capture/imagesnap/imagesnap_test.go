package imagesnap

import (
	"reflect"
	"testing"
	"time"

	"github.com/vmbkit/vmb-go/capture"
)

func TestParseDevices(t *testing.T) {
	const imagesnap0 = `Video Devices:
<AVCaptureDALDevice: 0x7fa2c7852fd0 [FaceTime HD Camera (Built-in)][0x8020000005ac8514]>
<AVCaptureDALDevice: 0x7fa2c78512f0 [FaceTime HD Camera (Display)][0x4015000005ac1112]>
<AVCaptureDALDevice: 0x7fa2c784f4e0 [Cam Link 4K #5][0x2000000fd90066]>
`

	devs0, err := parseDevices(imagesnap0)
	if err != nil {
		t.Fatalf("parsing old imagesnap output: %v", err)
	}
	exp0 := []capture.Device{
		{ID: "FaceTime HD Camera (Built-in)", Name: "FaceTime HD Camera (Built-in)"},
		{ID: "FaceTime HD Camera (Display)", Name: "FaceTime HD Camera (Display)"},
		{ID: "Cam Link 4K #5", Name: "Cam Link 4K #5"},
	}
	if !reflect.DeepEqual(devs0, exp0) {
		t.Fatalf("imagesnap devices, got %v, expected %v", devs0, exp0)
	}

	const imagesnap1 = `Video Devices:
=> FaceTime HD Camera (Built-in)
`
	devs1, err := parseDevices(imagesnap1)
	if err != nil {
		t.Fatalf("parsing imagesnap output: %v", err)
	}
	exp1 := []capture.Device{
		{ID: "FaceTime HD Camera (Built-in)", Name: "FaceTime HD Camera (Built-in)"},
	}
	if !reflect.DeepEqual(devs1, exp1) {
		t.Fatalf("imagesnap devices, got %v, expected %v", devs1, exp1)
	}

	if _, err := parseDevices("Video Devices:\n"); err != capture.ErrNoDevices {
		t.Fatalf("parsing empty device list, got %v, expected %v", err, capture.ErrNoDevices)
	}
}

func TestArgs(t *testing.T) {
	args := Args(capture.RecorderOpts{DeviceID: "Cam Link 4K #5", Interval: 250 * time.Millisecond})
	exp := []string{"-d", "Cam Link 4K #5", "-t", "0.25"}
	if !reflect.DeepEqual(args, exp) {
		t.Fatalf("imagesnap args, got %v, expected %v", args, exp)
	}
}
