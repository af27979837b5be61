package controller_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/controller"
	"github.com/vmbkit/vmb-go/observer"
	"github.com/vmbkit/vmb-go/vmbtest"
)

func TestEvenFloor(t *testing.T) {
	tests := []struct {
		max, increment, expected int64
	}{
		{1281, 2, 1280},
		{1283, 4, 1280},
		{1280, 1, 1280},
		{1281, 1, 1280},
		{10, 3, 6},
		{2056, 8, 2056},
		{1, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, controller.EvenFloor(tt.max, tt.increment), "max %d, increment %d", tt.max, tt.increment)
	}
}

func newCamera() *vmbtest.Camera {
	return &vmbtest.Camera{
		CamID: "DEV_1",
		Features: map[string]*vmbtest.Feature{
			"Width":  {FeatureName: "Width", Min: 0, Max: 1281, Inc: 2},
			"Height": {FeatureName: "Height", Min: 0, Max: 1283, Inc: 4},
		},
	}
}

func TestSetIntFeatureValueModulo2(t *testing.T) {
	cam := newCamera()
	require.NoError(t, controller.SetIntFeatureValueModulo2(cam, "Width"))
	assert.Equal(t, []int64{1280}, cam.Features["Width"].Sets)

	err := controller.SetIntFeatureValueModulo2(cam, "Gain")
	assert.Equal(t, vmb.StatusNotFound, vmb.StatusOf(err))

	cam.Features["Height"].RangeErr = vmb.StatusTimeout
	err = controller.SetIntFeatureValueModulo2(cam, "Height")
	assert.Equal(t, vmb.StatusTimeout, vmb.StatusOf(err))
	assert.Empty(t, cam.Features["Height"].Sets)

	cam.Features["Height"].RangeErr = nil
	cam.Features["Height"].IncErr = vmb.StatusWrongType
	err = controller.SetIntFeatureValueModulo2(cam, "Height")
	assert.Equal(t, vmb.StatusWrongType, vmb.StatusOf(err))

	cam.Features["Height"].IncErr = nil
	cam.Features["Height"].Inc = 0
	err = controller.SetIntFeatureValueModulo2(cam, "Height")
	assert.Equal(t, vmb.StatusInvalidValue, vmb.StatusOf(err))

	// The only even multiple of 3 below 4 is 0, outside the range.
	cam.Features["Height"] = &vmbtest.Feature{FeatureName: "Height", Min: 2, Max: 4, Inc: 3}
	err = controller.SetIntFeatureValueModulo2(cam, "Height")
	assert.Equal(t, vmb.StatusInvalidValue, vmb.StatusOf(err))
	assert.Empty(t, cam.Features["Height"].Sets)
}

func newController(cams ...*vmbtest.Camera) (*controller.Controller, *vmbtest.System, *bytes.Buffer) {
	sys := &vmbtest.System{List: cams, Ver: vmb.Version{Major: 1, Minor: 9, Patch: 2}}
	out := &bytes.Buffer{}
	return controller.New(sys, &controller.Opts{Out: out}), sys, out
}

func TestStartAndStop(t *testing.T) {
	cam := newCamera()
	c, _, out := newController(cam)
	require.NoError(t, c.StartUp())
	assert.Equal(t, "1.9.2", c.Version())
	require.Len(t, c.Cameras(), 1)

	cfg := config.ProgramConfig{CameraID: "DEV_1", FrameInfos: observer.FrameInfosShow, AllocAndAnnounce: true}
	require.NoError(t, c.StartContinuousImageAcquisition(cfg))

	assert.Equal(t, []string{
		"Open",
		"FeatureByName Width",
		"FeatureByName Height",
		"StartContinuousImageAcquisition",
	}, cam.CallLog())
	assert.Equal(t, []int64{1280}, cam.Features["Width"].Sets)
	assert.Equal(t, []int64{1280}, cam.Features["Height"].Sets)
	assert.Equal(t, controller.NumFrames, cam.BufferCount)
	assert.Equal(t, vmb.FrameAllocationAllocAndAnnounceFrame, cam.Alloc)
	require.NotNil(t, cam.Observer)

	// Deliver a frame through the installed observer.
	f := &vmbtest.Frame{FrameID: 1, W: 2, H: 2, Format: vmb.PixelFormatMono8, Data: []byte{1, 2, 3, 4}}
	cam.Observer.FrameReceived(f)
	assert.Equal(t, "Frame ID:1 Status:Complete Size:2x2 Format:0x1080001 FPS:?\n", out.String())
	assert.Len(t, cam.QueuedFrames(), 1)
	assert.Equal(t, uint64(1), c.Stats().Frames)
	require.NotNil(t, c.LastImage())
	assert.Equal(t, vmb.PixelFormatBGR8, c.LastImage().Format)

	require.NoError(t, c.StopContinuousImageAcquisition())
	calls := cam.CallLog()
	assert.Equal(t, []string{"StopContinuousImageAcquisition", "Close"}, calls[len(calls)-2:])
	require.NoError(t, c.ShutDown())
}

func TestStopReturnsCloseStatus(t *testing.T) {
	cam := newCamera()
	c, _, _ := newController(cam)
	require.NoError(t, c.StartUp())
	require.NoError(t, c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"}))

	cam.StopErr = vmb.StatusTimeout
	cam.CloseErr = vmb.StatusBadHandle
	err := c.StopContinuousImageAcquisition()
	assert.Equal(t, vmb.StatusBadHandle, vmb.StatusOf(err))
	calls := cam.CallLog()
	assert.Equal(t, []string{"StopContinuousImageAcquisition", "Close"}, calls[len(calls)-2:])

	// Stop errors alone are not reported.
	cam2 := newCamera()
	c2, _, _ := newController(cam2)
	require.NoError(t, c2.StartUp())
	require.NoError(t, c2.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"}))
	cam2.StopErr = vmb.StatusTimeout
	assert.NoError(t, c2.StopContinuousImageAcquisition())
}

func TestStopWithoutStart(t *testing.T) {
	c, _, _ := newController()
	err := c.StopContinuousImageAcquisition()
	assert.Equal(t, vmb.StatusDeviceNotOpen, vmb.StatusOf(err))
}

func TestStartClosesCameraOnFailure(t *testing.T) {
	t.Run("prepare fails", func(t *testing.T) {
		cam := newCamera()
		cam.Features["Height"].SetErr = vmb.StatusInvalidAccess
		c, _, _ := newController(cam)
		require.NoError(t, c.StartUp())

		err := c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"})
		assert.Equal(t, vmb.StatusInvalidAccess, vmb.StatusOf(err))
		assert.Equal(t, []string{"Open", "FeatureByName Width", "FeatureByName Height", "Close"}, cam.CallLog())
	})

	t.Run("missing feature", func(t *testing.T) {
		cam := newCamera()
		delete(cam.Features, "Width")
		c, _, _ := newController(cam)
		require.NoError(t, c.StartUp())

		err := c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"})
		assert.Equal(t, vmb.StatusNotFound, vmb.StatusOf(err))
		assert.Equal(t, []string{"Open", "FeatureByName Width", "Close"}, cam.CallLog())
	})

	t.Run("start fails", func(t *testing.T) {
		cam := newCamera()
		cam.StartErr = vmb.StatusResources
		c, _, _ := newController(cam)
		require.NoError(t, c.StartUp())

		err := c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"})
		assert.Equal(t, vmb.StatusResources, vmb.StatusOf(err))
		calls := cam.CallLog()
		assert.Equal(t, "Close", calls[len(calls)-1])

		assert.Equal(t, vmb.StatusDeviceNotOpen, vmb.StatusOf(c.StopContinuousImageAcquisition()))
	})

	t.Run("open fails", func(t *testing.T) {
		cam := newCamera()
		cam.OpenErr = vmb.StatusInvalidAccess
		c, _, _ := newController(cam)
		require.NoError(t, c.StartUp())

		err := c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_1"})
		assert.Equal(t, vmb.StatusInvalidAccess, vmb.StatusOf(err))
		assert.Equal(t, []string{"Open"}, cam.CallLog())
	})

	t.Run("unknown camera", func(t *testing.T) {
		c, _, _ := newController(newCamera())
		require.NoError(t, c.StartUp())
		err := c.StartContinuousImageAcquisition(config.ProgramConfig{CameraID: "DEV_2"})
		assert.Equal(t, vmb.StatusNotFound, vmb.StatusOf(err))
	})
}

func TestCamerasBeforeStartUp(t *testing.T) {
	c, _, _ := newController(newCamera())
	assert.Empty(t, c.Cameras())
	assert.Equal(t, "API not started.", c.ErrorCodeToMessage(vmb.StatusApiNotStarted))
}
