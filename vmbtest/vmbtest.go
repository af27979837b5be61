// Package vmbtest provides scriptable in-memory implementations of the vmb
// interfaces for tests.
package vmbtest

import (
	"sync"

	vmb "github.com/vmbkit/vmb-go"
)

// Frame is a frame with fixed metadata. Each getter returns its error field
// if set.
type Frame struct {
	FrameID   uint64
	IDErr     error
	Stamp     uint64
	StampErr  error
	Status    vmb.FrameStatus
	StatusErr error
	W, H      uint32
	WidthErr  error
	HeightErr error
	Format    vmb.PixelFormat
	FormatErr error
	Data      []byte
	BufferErr error
}

var _ vmb.Frame = (*Frame)(nil)

func (f *Frame) ID() (uint64, error)                     { return f.FrameID, f.IDErr }
func (f *Frame) Timestamp() (uint64, error)              { return f.Stamp, f.StampErr }
func (f *Frame) ReceiveStatus() (vmb.FrameStatus, error) { return f.Status, f.StatusErr }
func (f *Frame) Width() (uint32, error)                  { return f.W, f.WidthErr }
func (f *Frame) Height() (uint32, error)                 { return f.H, f.HeightErr }
func (f *Frame) PixelFormat() (vmb.PixelFormat, error)   { return f.Format, f.FormatErr }
func (f *Frame) Buffer() ([]byte, error)                 { return f.Data, f.BufferErr }

// Feature is an integer feature recording every written value.
type Feature struct {
	FeatureName   string
	Min, Max, Inc int64
	Val           int64
	RangeErr      error
	IncErr        error
	SetErr        error
	Sets          []int64
}

var _ vmb.Feature = (*Feature)(nil)

func (f *Feature) Name() string                  { return f.FeatureName }
func (f *Feature) Range() (int64, int64, error)  { return f.Min, f.Max, f.RangeErr }
func (f *Feature) Increment() (int64, error)     { return f.Inc, f.IncErr }
func (f *Feature) Value() (int64, error)         { return f.Val, nil }

func (f *Feature) SetValue(v int64) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Sets = append(f.Sets, v)
	f.Val = v
	return nil
}

// Camera records the calls made to it.
type Camera struct {
	CamID    string
	CamInfo  vmb.CameraInfo
	Features map[string]*Feature

	OpenErr  error
	CloseErr error
	StartErr error
	StopErr  error
	QueueErr error

	mu          sync.Mutex
	Calls       []string
	Queued      []vmb.Frame
	Observer    vmb.FrameObserver
	BufferCount int
	Alloc       vmb.FrameAllocation
}

var _ vmb.Camera = (*Camera)(nil)

func (c *Camera) record(call string) {
	c.mu.Lock()
	c.Calls = append(c.Calls, call)
	c.mu.Unlock()
}

// CallLog returns a copy of the recorded call names.
func (c *Camera) CallLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Calls...)
}

// QueuedFrames returns a copy of the frames given back with QueueFrame.
func (c *Camera) QueuedFrames() []vmb.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]vmb.Frame(nil), c.Queued...)
}

func (c *Camera) ID() (string, error) { return c.CamID, nil }

func (c *Camera) Info() (vmb.CameraInfo, error) {
	info := c.CamInfo
	info.ID = c.CamID
	return info, nil
}

func (c *Camera) Open(mode vmb.AccessMode) error {
	c.record("Open")
	return c.OpenErr
}

func (c *Camera) Close() error {
	c.record("Close")
	return c.CloseErr
}

func (c *Camera) FeatureByName(name string) (vmb.Feature, error) {
	c.record("FeatureByName " + name)
	f, ok := c.Features[name]
	if !ok {
		return nil, vmb.StatusNotFound
	}
	return f, nil
}

func (c *Camera) StartContinuousImageAcquisition(bufferCount int, observer vmb.FrameObserver, alloc vmb.FrameAllocation) error {
	c.record("StartContinuousImageAcquisition")
	if c.StartErr != nil {
		return c.StartErr
	}
	c.mu.Lock()
	c.Observer = observer
	c.BufferCount = bufferCount
	c.Alloc = alloc
	c.mu.Unlock()
	return nil
}

func (c *Camera) StopContinuousImageAcquisition() error {
	c.record("StopContinuousImageAcquisition")
	return c.StopErr
}

func (c *Camera) QueueFrame(f vmb.Frame) error {
	c.mu.Lock()
	c.Queued = append(c.Queued, f)
	c.mu.Unlock()
	return c.QueueErr
}

// System opens cameras from a fixed list.
type System struct {
	List       []*Camera
	StartupErr error
	Ver        vmb.Version
	Started    bool
}

var _ vmb.System = (*System)(nil)

func (s *System) Startup() error {
	if s.StartupErr != nil {
		return s.StartupErr
	}
	s.Started = true
	return nil
}

func (s *System) Shutdown() error {
	s.Started = false
	return nil
}

func (s *System) Cameras() ([]vmb.Camera, error) {
	if !s.Started {
		return nil, vmb.StatusApiNotStarted
	}
	l := make([]vmb.Camera, len(s.List))
	for i, c := range s.List {
		l[i] = c
	}
	return l, nil
}

func (s *System) OpenCameraByID(id string, mode vmb.AccessMode) (vmb.Camera, error) {
	if !s.Started {
		return nil, vmb.StatusApiNotStarted
	}
	for _, c := range s.List {
		if c.CamID == id {
			if err := c.Open(mode); err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return nil, vmb.StatusNotFound
}

func (s *System) Version() (vmb.Version, error) {
	return s.Ver, nil
}
