package sim

import (
	"log"
	"sync"
	"time"

	vmb "github.com/vmbkit/vmb-go"
)

// Camera is a simulated camera.
type Camera struct {
	profile CameraProfile
	format  vmb.PixelFormat
	verbose bool

	mu        sync.Mutex
	open      bool
	width     int64
	height    int64
	streaming bool
	frames    []*Frame
	queue     chan *Frame
	stop      chan struct{}
	done      chan struct{}
}

// Check that Camera implements interface vmb.Camera.
var _ vmb.Camera = (*Camera)(nil)

func newCamera(p CameraProfile, verbose bool) *Camera {
	format, _ := vmb.ParsePixelFormat(p.PixelFormat)
	return &Camera{
		profile: p,
		format:  format,
		verbose: verbose,
		width:   p.Width.Max,
		height:  p.Height.Max,
	}
}

func (c *Camera) logf(format string, args ...interface{}) {
	if c.verbose {
		log.Printf("%s: "+format, append([]interface{}{c.profile.ID}, args...)...)
	}
}

// ID returns the id of the camera.
func (c *Camera) ID() (string, error) {
	return c.profile.ID, nil
}

// Info returns the descriptive fields of the camera.
func (c *Camera) Info() (vmb.CameraInfo, error) {
	return vmb.CameraInfo{
		ID:           c.profile.ID,
		Name:         c.profile.Name,
		Model:        c.profile.Model,
		SerialNumber: c.profile.Serial,
		InterfaceID:  c.profile.InterfaceID,
	}, nil
}

// Open opens the camera. A camera can only be opened once.
func (c *Camera) Open(mode vmb.AccessMode) error {
	if mode == vmb.AccessModeNone {
		return vmb.StatusBadParameter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return vmb.StatusInvalidAccess
	}
	c.open = true
	c.logf("opened")
	return nil
}

// Close stops streaming if needed and closes the camera.
func (c *Camera) Close() error {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if !open {
		return vmb.StatusDeviceNotOpen
	}
	c.stopStreaming()

	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
	c.logf("closed")
	return nil
}

func (c *Camera) shutdown() {
	if err := c.Close(); err != nil && err != vmb.StatusDeviceNotOpen {
		c.logf("close on shutdown: %v", err)
	}
}

// FeatureByName returns the integer features Width and Height.
func (c *Camera) FeatureByName(name string) (vmb.Feature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, vmb.StatusDeviceNotOpen
	}
	switch name {
	case "Width":
		return &feature{cam: c, name: name, r: c.profile.Width, value: &c.width}, nil
	case "Height":
		return &feature{cam: c, name: name, r: c.profile.Height, value: &c.height}, nil
	}
	return nil, vmb.StatusNotFound
}

// StartContinuousImageAcquisition announces bufferCount frames, queues them
// and starts delivering them to observer at the frame rate of the profile.
// Frames are always allocated by the camera, alloc only decides whether this
// is logged as such.
func (c *Camera) StartContinuousImageAcquisition(bufferCount int, observer vmb.FrameObserver, alloc vmb.FrameAllocation) error {
	if bufferCount <= 0 || observer == nil {
		return vmb.StatusBadParameter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return vmb.StatusDeviceNotOpen
	}
	if c.streaming {
		return vmb.StatusInvalidAccess
	}

	size := int(c.width) * int(c.height) * c.format.BitsPerPixel() / 8
	c.frames = make([]*Frame, bufferCount)
	c.queue = make(chan *Frame, bufferCount)
	for i := range c.frames {
		f := &Frame{
			cam:    c,
			width:  uint32(c.width),
			height: uint32(c.height),
			format: c.format,
			data:   make([]byte, size),
		}
		c.frames[i] = f
		c.queue <- f
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.streaming = true
	c.logf("announced %d frames of %dx%d %s (%s)", bufferCount, c.width, c.height, c.format, alloc)

	go c.run(observer, c.queue, c.stop, c.done)
	return nil
}

// StopContinuousImageAcquisition stops streaming and revokes all frames. It
// waits until the observer has returned from a frame being delivered.
func (c *Camera) StopContinuousImageAcquisition() error {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if !open {
		return vmb.StatusDeviceNotOpen
	}
	c.stopStreaming()
	return nil
}

func (c *Camera) stopStreaming() {
	c.mu.Lock()
	if !c.streaming {
		c.mu.Unlock()
		return
	}
	c.streaming = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	// The observer requeues frames while delivering, which takes c.mu.
	close(stop)
	<-done

	c.mu.Lock()
	c.frames = nil
	c.queue = nil
	c.mu.Unlock()
	c.logf("acquisition stopped")
}

// QueueFrame hands a frame back to the camera for delivery.
func (c *Camera) QueueFrame(f vmb.Frame) error {
	sf, ok := f.(*Frame)
	if !ok || sf == nil || sf.cam != c {
		return vmb.StatusBadParameter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue == nil {
		return vmb.StatusInvalidCall
	}
	select {
	case c.queue <- sf:
		return nil
	default:
		// Frame queued twice.
		return vmb.StatusInvalidCall
	}
}

func (c *Camera) run(observer vmb.FrameObserver, queue chan *Frame, stop, done chan struct{}) {
	defer close(done)

	interval := time.Duration(float64(time.Second) / c.profile.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var id uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		id++
		if c.profile.DropEvery > 0 && id%c.profile.DropEvery == 0 {
			c.logf("frame %d lost", id)
			continue
		}
		var f *Frame
		select {
		case f = <-queue:
		default:
			c.logf("no frame queued, frame %d lost", id)
			continue
		}
		status := vmb.FrameStatusComplete
		if c.profile.IncompleteEvery > 0 && id%c.profile.IncompleteEvery == 0 {
			status = vmb.FrameStatusIncomplete
		}
		f.fill(id, uint64(time.Since(start).Nanoseconds()), status)
		observer.FrameReceived(f)
	}
}

// feature is an integer feature backed by a field of its camera.
type feature struct {
	cam   *Camera
	name  string
	r     Range
	value *int64
}

var _ vmb.Feature = (*feature)(nil)

func (f *feature) Name() string { return f.name }

func (f *feature) Range() (int64, int64, error) {
	return f.r.Min, f.r.Max, nil
}

func (f *feature) Increment() (int64, error) {
	return f.r.Increment, nil
}

func (f *feature) Value() (int64, error) {
	f.cam.mu.Lock()
	defer f.cam.mu.Unlock()
	return *f.value, nil
}

// SetValue sets the feature. Geometry cannot change while streaming.
func (f *feature) SetValue(v int64) error {
	if v < f.r.Min || v > f.r.Max || (v-f.r.Min)%f.r.Increment != 0 {
		return vmb.StatusInvalidValue
	}
	f.cam.mu.Lock()
	defer f.cam.mu.Unlock()
	if !f.cam.open {
		return vmb.StatusDeviceNotOpen
	}
	if f.cam.streaming {
		return vmb.StatusInvalidAccess
	}
	*f.value = v
	f.cam.logf("%s set to %d", f.name, v)
	return nil
}
