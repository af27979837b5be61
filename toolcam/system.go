// Package toolcam implements a camera runtime for webcams, driving an
// external capture tool (gstreamer, ffmpeg or imagesnap) per camera. Images
// written by the tool are decoded, scaled to the geometry set with the Width
// and Height features and delivered as RGB8 frames.
package toolcam

import (
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/capture"
	"github.com/vmbkit/vmb-go/capture/ffmpeg"
	"github.com/vmbkit/vmb-go/capture/gstreamer"
	"github.com/vmbkit/vmb-go/capture/imagesnap"
)

// Version is the version reported by the runtime.
var Version = vmb.Version{Major: 1, Minor: 0, Patch: 0}

// Tool is a capture tool cameras can be driven with.
type Tool struct {
	Name        string
	ListDevices func() ([]capture.Device, error)
	NewRecorder func(opts capture.RecorderOpts) (capture.Recorder, error)
}

func recorder(r *capture.ToolRecorder, err error) (capture.Recorder, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

var (
	Gstreamer = Tool{
		Name:        "gstreamer",
		ListDevices: gstreamer.ListDevices,
		NewRecorder: func(opts capture.RecorderOpts) (capture.Recorder, error) {
			return recorder(gstreamer.NewRecorder(opts))
		},
	}
	FFmpeg = Tool{
		Name:        "ffmpeg",
		ListDevices: ffmpeg.ListDevices,
		NewRecorder: func(opts capture.RecorderOpts) (capture.Recorder, error) {
			return recorder(ffmpeg.NewRecorder(opts))
		},
	}
	Imagesnap = Tool{
		Name:        "imagesnap",
		ListDevices: imagesnap.ListDevices,
		NewRecorder: func(opts capture.RecorderOpts) (capture.Recorder, error) {
			return recorder(imagesnap.NewRecorder(opts))
		},
	}
)

// ToolByName returns the tool called name.
func ToolByName(name string) (Tool, error) {
	for _, t := range []Tool{Gstreamer, FFmpeg, Imagesnap} {
		if t.Name == name {
			return t, nil
		}
	}
	return Tool{}, errors.Wrapf(vmb.StatusBadParameter, "unknown capture tool %q", name)
}

// DefaultInterval is the capture interval used when Opts.Interval is zero.
const DefaultInterval = 100 * time.Millisecond

// Opts are options for a new System.
type Opts struct {
	Tool     Tool
	Interval time.Duration // How often to capture an image.
	Verbose  bool
}

// System is a camera runtime over the devices of a capture tool.
type System struct {
	opts Opts

	mu      sync.Mutex
	started bool
	cameras map[string]*Camera
}

// Check that System implements interface vmb.System.
var _ vmb.System = (*System)(nil)

// NewSystem returns a new runtime for opts.Tool.
func NewSystem(opts Opts) *System {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &System{opts: opts, cameras: map[string]*Camera{}}
}

func (s *System) logf(format string, args ...interface{}) {
	if s.opts.Verbose {
		log.Printf(format, args...)
	}
}

// Startup starts the runtime. Devices are listed when cameras are requested.
func (s *System) Startup() error {
	if s.opts.Tool.ListDevices == nil || s.opts.Tool.NewRecorder == nil {
		return errors.Wrap(vmb.StatusBadParameter, "incomplete capture tool")
	}
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.logf("%s runtime started, capturing every %s", s.opts.Tool.Name, s.opts.Interval)
	return nil
}

// Shutdown closes all open cameras.
func (s *System) Shutdown() error {
	s.mu.Lock()
	cameras := s.cameras
	s.cameras = map[string]*Camera{}
	s.started = false
	s.mu.Unlock()

	for _, c := range cameras {
		if err := c.Close(); err != nil && vmb.StatusOf(err) != vmb.StatusDeviceNotOpen {
			s.logf("closing %s on shutdown: %v", c.dev.ID, err)
		}
	}
	return nil
}

// Cameras lists the devices of the tool. A device keeps its camera between
// calls, so that an open camera stays open.
func (s *System) Cameras() ([]vmb.Camera, error) {
	cams, err := s.list()
	if err != nil {
		return nil, err
	}
	l := make([]vmb.Camera, len(cams))
	for i, c := range cams {
		l[i] = c
	}
	return l, nil
}

func (s *System) list() ([]*Camera, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, vmb.StatusApiNotStarted
	}

	devs, err := s.opts.Tool.ListDevices()
	if errors.Is(err, capture.ErrNoDevices) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s devices", s.opts.Tool.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var cams []*Camera
	for _, d := range devs {
		c, ok := s.cameras[d.ID]
		if !ok {
			c = newCamera(d, s.opts)
			s.cameras[d.ID] = c
		}
		cams = append(cams, c)
	}
	return cams, nil
}

// OpenCameraByID opens the camera for the device with the given id.
func (s *System) OpenCameraByID(id string, mode vmb.AccessMode) (vmb.Camera, error) {
	cams, err := s.list()
	if err != nil {
		return nil, err
	}
	for _, c := range cams {
		if c.dev.ID == id {
			if err := c.Open(mode); err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return nil, vmb.StatusNotFound
}

// Version returns Version.
func (s *System) Version() (vmb.Version, error) {
	return Version, nil
}
