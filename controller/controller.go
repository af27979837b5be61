// Package controller drives continuous acquisition of one camera: it starts
// the camera runtime, opens a camera, prepares its geometry, installs a frame
// observer and starts and stops streaming.
package controller

import (
	"io"
	"log"
	"sync"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/observer"
	"github.com/vmbkit/vmb-go/transform"
)

// NumFrames is the number of frames announced to a camera for continuous
// acquisition.
const NumFrames = 3

// Opts are options for a controller.
type Opts struct {
	Out      io.Writer        // Where the observer prints frame infos, os.Stdout if nil.
	TraceDir string           // Passed to the frame processor.
	Sinks    []transform.Sink // Receive every converted image.
	Verbose  bool
}

// Controller drives one camera of a runtime.
type Controller struct {
	system vmb.System
	opts   Opts

	mu        sync.Mutex
	camera    vmb.Camera
	observer  *observer.Observer
	processor *transform.Processor
}

// New returns a controller for the cameras of system.
func New(system vmb.System, opts *Opts) *Controller {
	var xopts Opts
	if opts != nil {
		xopts = *opts
	}
	return &Controller{system: system, opts: xopts}
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.opts.Verbose {
		log.Printf(format, args...)
	}
}

// StartUp starts the runtime and loads its transport layers.
func (c *Controller) StartUp() error {
	return c.system.Startup()
}

// ShutDown releases the runtime.
func (c *Controller) ShutDown() error {
	return c.system.Shutdown()
}

// Cameras returns all cameras known to the runtime, or none if they cannot
// be listed.
func (c *Controller) Cameras() []vmb.Camera {
	cameras, err := c.system.Cameras()
	if err != nil {
		c.logf("listing cameras: %v", err)
		return nil
	}
	return cameras
}

// Version returns the version of the runtime, "?" if unknown.
func (c *Controller) Version() string {
	v, err := c.system.Version()
	if err != nil {
		return "?"
	}
	return v.String()
}

// ErrorCodeToMessage translates an error to a readable message.
func (c *Controller) ErrorCodeToMessage(err error) string {
	return vmb.ErrorCodeToMessage(err)
}

// StartContinuousImageAcquisition opens the camera cfg.CameraID, adjusts its
// geometry, creates a frame observer and starts streaming. If anything fails
// after the camera was opened, the camera is closed again. Errors are
// returned unchanged.
func (c *Controller) StartContinuousImageAcquisition(cfg config.ProgramConfig) (rerr error) {
	cam, err := c.system.OpenCameraByID(cfg.CameraID, vmb.AccessModeFull)
	if err != nil {
		return err
	}
	defer func() {
		if rerr != nil {
			if err := cam.Close(); err != nil {
				c.logf("closing camera after failed start: %v", err)
			}
		}
	}()

	if err := PrepareCamera(cam); err != nil {
		return err
	}

	proc := transform.NewProcessor(&transform.ProcessorOpts{
		RGB:             cfg.RGB,
		ColorCorrection: cfg.ColorProcessing == observer.ColorProcessingMatrix,
		TraceDir:        c.opts.TraceDir,
		Verbose:         c.opts.Verbose,
		Sinks:           c.opts.Sinks,
	})
	obs := observer.New(cam, cfg.ObserverConfig(), proc, &observer.Opts{Out: c.opts.Out, Verbose: c.opts.Verbose})
	c.logf("starting acquisition with %d frames (%s), converting to %s", NumFrames, cfg.FrameAllocation(), proc.DestFormat())
	if err := cam.StartContinuousImageAcquisition(NumFrames, obs, cfg.FrameAllocation()); err != nil {
		return err
	}

	c.mu.Lock()
	c.camera = cam
	c.observer = obs
	c.processor = proc
	c.mu.Unlock()
	return nil
}

// PrepareCamera sets width and height of cam to the largest even values it
// supports, so that delivered images can be transformed.
func PrepareCamera(cam vmb.Camera) error {
	if err := SetIntFeatureValueModulo2(cam, "Width"); err != nil {
		return err
	}
	return SetIntFeatureValueModulo2(cam, "Height")
}

// StopContinuousImageAcquisition stops streaming and closes the camera. The
// result of stopping is not reported, the result of closing is.
func (c *Controller) StopContinuousImageAcquisition() error {
	c.mu.Lock()
	cam := c.camera
	c.mu.Unlock()
	if cam == nil {
		return vmb.StatusDeviceNotOpen
	}

	if err := cam.StopContinuousImageAcquisition(); err != nil {
		c.logf("stopping acquisition: %v", err)
	}
	err := cam.Close()

	c.mu.Lock()
	c.camera = nil
	c.mu.Unlock()
	return err
}

// Stats returns the totals of the most recently started observer.
func (c *Controller) Stats() observer.Stats {
	c.mu.Lock()
	obs := c.observer
	c.mu.Unlock()
	if obs == nil {
		return observer.Stats{}
	}
	return obs.Stats()
}

// LastImage returns the most recently converted image, nil if none.
func (c *Controller) LastImage() *transform.Image {
	c.mu.Lock()
	proc := c.processor
	c.mu.Unlock()
	if proc == nil {
		return nil
	}
	return proc.Last()
}
