// Package vmb describes the camera runtime used by the acquisition commands:
// systems that enumerate and open cameras, cameras that stream frames from a
// small pool of buffers to a FrameObserver, and the frames themselves.
//
// Concrete runtimes live in subpackages: sim streams synthetic frames,
// toolcam captures from webcams through external tools.
package vmb

import (
	"fmt"
)

// Version is the version of a camera runtime.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AccessMode is the mode a camera is opened with.
type AccessMode int

// Access modes.
const (
	AccessModeNone AccessMode = iota
	AccessModeFull
	AccessModeRead
)

// FrameAllocation selects who allocates the frame buffers announced to a
// camera when starting continuous acquisition.
type FrameAllocation int

const (
	// FrameAllocationAnnounceFrame has the caller allocate the buffers.
	FrameAllocationAnnounceFrame FrameAllocation = iota

	// FrameAllocationAllocAndAnnounceFrame has the camera allocate the
	// buffers, for example in memory suitable for DMA.
	FrameAllocationAllocAndAnnounceFrame
)

func (a FrameAllocation) String() string {
	if a == FrameAllocationAllocAndAnnounceFrame {
		return "AllocAndAnnounceFrame"
	}
	return "AnnounceFrame"
}

// System is an instance of a camera runtime.
type System interface {
	// Startup initializes the runtime and loads its transport layers.
	Startup() error

	// Shutdown releases the runtime. Open cameras are closed.
	Shutdown() error

	// Cameras returns all cameras known to the runtime.
	Cameras() ([]Camera, error)

	// OpenCameraByID opens the camera with the given ID.
	OpenCameraByID(id string, mode AccessMode) (Camera, error)

	// Version returns the version of the runtime.
	Version() (Version, error)
}

// CameraInfo holds the static details of a camera.
type CameraInfo struct {
	ID           string
	Name         string
	Model        string
	SerialNumber string
	InterfaceID  string
}

// Camera is a single camera of a System.
type Camera interface {
	ID() (string, error)
	Info() (CameraInfo, error)

	Open(mode AccessMode) error
	Close() error

	// FeatureByName returns the named feature, e.g. "Width" or "Height".
	FeatureByName(name string) (Feature, error)

	// StartContinuousImageAcquisition announces bufferCount frames, queues
	// them and starts streaming. Every captured frame is passed to
	// observer.FrameReceived, which must give it back with QueueFrame.
	StartContinuousImageAcquisition(bufferCount int, observer FrameObserver, alloc FrameAllocation) error

	// StopContinuousImageAcquisition stops streaming and revokes the frames.
	// When it returns, no FrameReceived call is in progress.
	StopContinuousImageAcquisition() error

	// QueueFrame hands a frame back to the camera for reuse.
	QueueFrame(f Frame) error
}

// Feature is an integer feature of a camera.
type Feature interface {
	Name() string
	Range() (min, max int64, err error)
	Increment() (int64, error)
	Value() (int64, error)
	SetValue(v int64) error
}

// Frame is one captured image buffer with its metadata. Frames are owned by
// the camera, observers only borrow them for the duration of a callback.
type Frame interface {
	ID() (uint64, error)
	// Timestamp returns the device timestamp in ticks.
	Timestamp() (uint64, error)
	ReceiveStatus() (FrameStatus, error)
	Width() (uint32, error)
	Height() (uint32, error)
	PixelFormat() (PixelFormat, error)
	Buffer() ([]byte, error)
}

// FrameObserver receives frames from a streaming camera.
type FrameObserver interface {
	// FrameReceived is called once per delivered frame, on the runtime's
	// delivery goroutine. f is nil if the runtime delivered an empty handle.
	FrameReceived(f Frame)
}
