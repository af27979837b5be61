package toolcam

import (
	"image"
	"log"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/capture"
)

// Feature limits of cameras without known capabilities.
const (
	minSide     = 16
	defaultMaxW = 1920
	defaultMaxH = 1080
)

type limits struct {
	min, max, inc int64
}

// Camera is a device of a capture tool.
type Camera struct {
	dev  capture.Device
	opts Opts

	widthLimits, heightLimits limits

	mu        sync.Mutex
	open      bool
	width     int64
	height    int64
	streaming bool
	rec       capture.Recorder
	queue     chan *Frame
	stop      chan struct{}
	done      chan struct{}
}

// Check that Camera implements interface vmb.Camera.
var _ vmb.Camera = (*Camera)(nil)

func newCamera(dev capture.Device, opts Opts) *Camera {
	c := &Camera{
		dev:          dev,
		opts:         opts,
		widthLimits:  limits{minSide, defaultMaxW, 1},
		heightLimits: limits{minSide, defaultMaxH, 1},
		width:        640,
		height:       480,
	}
	if dc, ok := capture.ClosestCap(dev.Caps, 640, 480); ok {
		c.width, c.height = int64(dc.Width), int64(dc.Height)
	}
	for _, dc := range dev.Caps {
		if int64(dc.Width) > c.widthLimits.max {
			c.widthLimits.max = int64(dc.Width)
		}
		if int64(dc.Height) > c.heightLimits.max {
			c.heightLimits.max = int64(dc.Height)
		}
	}
	return c
}

func (c *Camera) logf(format string, args ...interface{}) {
	if c.opts.Verbose {
		log.Printf("%s: "+format, append([]interface{}{c.dev.ID}, args...)...)
	}
}

// ID returns the device id.
func (c *Camera) ID() (string, error) {
	return c.dev.ID, nil
}

// Info describes the device. The tool stands in for model and interface.
func (c *Camera) Info() (vmb.CameraInfo, error) {
	return vmb.CameraInfo{
		ID:           c.dev.ID,
		Name:         c.dev.Name,
		Model:        c.opts.Tool.Name,
		SerialNumber: "N/A",
		InterfaceID:  c.opts.Tool.Name,
	}, nil
}

// Open opens the camera. The tool is only started with acquisition.
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
	return nil
}

// Close stops acquisition if needed and closes the camera.
func (c *Camera) Close() error {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if !open {
		return vmb.StatusDeviceNotOpen
	}
	err := c.stopStreaming()

	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
	return err
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
		return &feature{cam: c, name: name, l: c.widthLimits, value: &c.width}, nil
	case "Height":
		return &feature{cam: c, name: name, l: c.heightLimits, value: &c.height}, nil
	}
	return nil, vmb.StatusNotFound
}

// StartContinuousImageAcquisition starts the capture tool and delivers its
// images in bufferCount RGB8 frames. An image arriving while no frame is
// queued is dropped and its frame id skipped.
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

	rec, err := c.opts.Tool.NewRecorder(capture.RecorderOpts{
		Verbose:  c.opts.Verbose,
		Interval: c.opts.Interval,
		DeviceID: c.dev.ID,
		Width:    int(c.width),
		Height:   int(c.height),
	})
	if err != nil {
		return err
	}

	c.queue = make(chan *Frame, bufferCount)
	for i := 0; i < bufferCount; i++ {
		c.queue <- &Frame{
			cam:    c,
			width:  uint32(c.width),
			height: uint32(c.height),
			data:   make([]byte, int(c.width)*int(c.height)*3),
		}
	}
	c.rec = rec
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.streaming = true
	c.logf("%s started, %d frames of %dx%d (%s)", c.opts.Tool.Name, bufferCount, c.width, c.height, alloc)

	go c.run(observer, rec, c.queue, c.stop, c.done)
	return nil
}

// StopContinuousImageAcquisition stops the capture tool. It waits until the
// observer has returned from a frame being delivered.
func (c *Camera) StopContinuousImageAcquisition() error {
	c.mu.Lock()
	open := c.open
	c.mu.Unlock()
	if !open {
		return vmb.StatusDeviceNotOpen
	}
	return c.stopStreaming()
}

func (c *Camera) stopStreaming() error {
	c.mu.Lock()
	if !c.streaming {
		c.mu.Unlock()
		return nil
	}
	c.streaming = false
	stop, done, rec := c.stop, c.done, c.rec
	c.mu.Unlock()

	close(stop)
	<-done
	err := rec.Close()

	c.mu.Lock()
	c.queue = nil
	c.rec = nil
	c.mu.Unlock()
	c.logf("%s stopped", c.opts.Tool.Name)
	return err
}

// QueueFrame hands a frame back to the camera for delivery.
func (c *Camera) QueueFrame(f vmb.Frame) error {
	tf, ok := f.(*Frame)
	if !ok || tf == nil || tf.cam != c {
		return vmb.StatusBadParameter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue == nil {
		return vmb.StatusInvalidCall
	}
	select {
	case c.queue <- tf:
		return nil
	default:
		return vmb.StatusInvalidCall
	}
}

func (c *Camera) run(observer vmb.FrameObserver, rec capture.Recorder, queue chan *Frame, stop, done chan struct{}) {
	defer close(done)

	start := time.Now()
	var id uint64
	for {
		var ev capture.Event
		var ok bool
		select {
		case <-stop:
			return
		case ev, ok = <-rec.Events():
			if !ok {
				return
			}
		}
		if ev.Err != nil {
			c.logf("%v", ev.Err)
			continue
		}
		if ev.Image == nil || ev.Image.Bounds().Empty() {
			continue
		}
		id++
		var f *Frame
		select {
		case f = <-queue:
		default:
			c.logf("no frame queued, image %d dropped", id)
			continue
		}
		f.fill(id, uint64(time.Since(start).Nanoseconds()), ev.Image)
		observer.FrameReceived(f)
	}
}

// Frame is an RGB8 frame of a tool camera.
type Frame struct {
	cam *Camera

	id        uint64
	timestamp uint64
	width     uint32
	height    uint32
	data      []byte
}

var _ vmb.Frame = (*Frame)(nil)

func (f *Frame) ID() (uint64, error)                     { return f.id, nil }
func (f *Frame) Timestamp() (uint64, error)              { return f.timestamp, nil }
func (f *Frame) ReceiveStatus() (vmb.FrameStatus, error) { return vmb.FrameStatusComplete, nil }
func (f *Frame) Width() (uint32, error)                  { return f.width, nil }
func (f *Frame) Height() (uint32, error)                 { return f.height, nil }
func (f *Frame) PixelFormat() (vmb.PixelFormat, error)   { return vmb.PixelFormatRGB8, nil }
func (f *Frame) Buffer() ([]byte, error)                 { return f.data, nil }

// fill scales img to the frame geometry and stores it as RGB8.
func (f *Frame) fill(id, timestamp uint64, img image.Image) {
	f.id = id
	f.timestamp = timestamp

	w, h := int(f.width), int(f.height)
	dst := imaging.Resize(img, w, h, imaging.Linear)
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		out := f.data[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			copy(out[x*3:x*3+3], row[x*4:x*4+3])
		}
	}
}

// feature is an integer feature backed by a field of its camera.
type feature struct {
	cam   *Camera
	name  string
	l     limits
	value *int64
}

var _ vmb.Feature = (*feature)(nil)

func (f *feature) Name() string { return f.name }

func (f *feature) Range() (int64, int64, error) {
	return f.l.min, f.l.max, nil
}

func (f *feature) Increment() (int64, error) {
	return f.l.inc, nil
}

func (f *feature) Value() (int64, error) {
	f.cam.mu.Lock()
	defer f.cam.mu.Unlock()
	return *f.value, nil
}

// SetValue sets the geometry images are scaled to. It cannot change while
// the tool runs.
func (f *feature) SetValue(v int64) error {
	if v < f.l.min || v > f.l.max {
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
	return nil
}
