// Package sim implements a camera runtime with simulated cameras. Cameras
// stream synthetic frames at a fixed rate from the pool of frames announced
// when acquisition starts, like hardware does: a frame that arrives while no
// buffer is queued is lost, and its id is skipped.
package sim

import (
	"log"
	"sync"

	vmb "github.com/vmbkit/vmb-go"
)

// Version is the version reported by the simulated runtime.
var Version = vmb.Version{Major: 1, Minor: 0, Patch: 0}

// Opts are options for a simulated system.
type Opts struct {
	Profile *Profile // Cameras of the system, DefaultProfile if nil.
	Verbose bool
}

// System is a simulated camera runtime.
type System struct {
	opts Opts

	mu      sync.Mutex
	started bool
	cameras []*Camera
}

// Check that System implements interface vmb.System.
var _ vmb.System = (*System)(nil)

// NewSystem returns a new simulated system. The profile is checked when the
// system is started.
func NewSystem(opts *Opts) *System {
	var xopts Opts
	if opts != nil {
		xopts = *opts
	}
	if xopts.Profile == nil {
		p := DefaultProfile()
		xopts.Profile = &p
	}
	return &System{opts: xopts}
}

func (s *System) logf(format string, args ...interface{}) {
	if s.opts.Verbose {
		log.Printf(format, args...)
	}
}

// Startup creates the cameras of the profile.
func (s *System) Startup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	p := *s.opts.Profile
	p.Cameras = append([]CameraProfile(nil), p.Cameras...)
	if err := p.normalize(); err != nil {
		return err
	}
	s.cameras = nil
	for _, cp := range p.Cameras {
		s.cameras = append(s.cameras, newCamera(cp, s.opts.Verbose))
	}
	s.started = true
	s.logf("sim runtime started with %d cameras", len(s.cameras))
	return nil
}

// Shutdown closes all open cameras.
func (s *System) Shutdown() error {
	s.mu.Lock()
	cameras := s.cameras
	s.cameras = nil
	s.started = false
	s.mu.Unlock()

	for _, c := range cameras {
		c.shutdown()
	}
	return nil
}

// Cameras returns the cameras of the profile.
func (s *System) Cameras() ([]vmb.Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, vmb.StatusApiNotStarted
	}
	l := make([]vmb.Camera, len(s.cameras))
	for i, c := range s.cameras {
		l[i] = c
	}
	return l, nil
}

// OpenCameraByID opens the camera with the given id.
func (s *System) OpenCameraByID(id string, mode vmb.AccessMode) (vmb.Camera, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil, vmb.StatusApiNotStarted
	}
	var cam *Camera
	for _, c := range s.cameras {
		if c.profile.ID == id {
			cam = c
			break
		}
	}
	s.mu.Unlock()

	if cam == nil {
		return nil, vmb.StatusNotFound
	}
	if err := cam.Open(mode); err != nil {
		return nil, err
	}
	return cam, nil
}

// Version returns Version.
func (s *System) Version() (vmb.Version, error) {
	return Version, nil
}
