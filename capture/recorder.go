package capture

import (
	"context"
	"image"
	"image/jpeg"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	vmb "github.com/vmbkit/vmb-go"
)

// Recorder is a source of images, for example a webcam.
type Recorder interface {
	// Events returns a channel from which Events can be read, each containing an image.
	Events() <-chan Event

	// Close shuts down the image recorder. No further Events will be sent.
	Close() error
}

// Event is a single image (or error) coming from a Recorder.
type Event struct {
	// If set, an error occurred.
	Err error

	// Image read from recorder. If Err is set, Image is not valid.
	Image image.Image
}

// RecorderOpts has options for a new recorder of one of the tools.
type RecorderOpts struct {
	Verbose  bool
	Interval time.Duration // How often to record an image.
	DeviceID string        // As returned by ListDevices. If empty, the first device is used.

	// Requested geometry. Tools capture at the supported geometry closest to
	// it, or at 640x480 if unknown.
	Width, Height int
}

// ToolOpts describes how to run a capture tool.
type ToolOpts struct {
	Command string
	Args    func(dir string) []string // Command line arguments, dir is where images must be written.

	// Op selects the file events after which an image is read. Files
	// that are not complete yet fail to decode and are skipped.
	Op fsnotify.Op

	// Images arriving faster than Interval are removed unread.
	Interval time.Duration

	// Returned, wrapped, when Command cannot be found.
	InstallHint string

	Verbose bool
}

// ToolRecorder runs a capture tool writing JPEG files to a temporary
// directory, and sends the decoded images on the channel returned by Events.
type ToolRecorder struct {
	opts    ToolOpts
	events  chan Event
	tempDir string
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher

	closeOnce sync.Once
	closed    chan struct{}
}

// Check that ToolRecorder implements interface Recorder.
var _ Recorder = (*ToolRecorder)(nil)

// Events returns a channel on which Events can be received. An image is
// dropped when nobody is receiving when it is decoded.
func (r *ToolRecorder) Events() <-chan Event {
	return r.events
}

// Dir returns the directory the tool writes images to.
func (r *ToolRecorder) Dir() string {
	return r.tempDir
}

func (r *ToolRecorder) logf(format string, args ...interface{}) {
	if r.opts.Verbose {
		log.Printf(format, args...)
	}
}

// StartTool starts the tool described by opts.
//
// Callers must call Close to clean up.
func StartTool(opts ToolOpts) (recorder *ToolRecorder, rerr error) {
	if opts.Op == 0 {
		opts.Op = fsnotify.Create | fsnotify.Write
	}
	r := &ToolRecorder{
		opts:   opts,
		events: make(chan Event),
		closed: make(chan struct{}),
	}

	// Ensure cleanup in case of failure.
	defer func() {
		if rerr != nil {
			r.Close()
		}
	}()

	tempDir, err := vmb.TempDir("vmb-" + opts.Command + "-")
	if err != nil {
		return nil, errors.Wrap(err, "making temp dir")
	}
	r.tempDir = tempDir
	r.logf("%s recorder, writing images to tempdir %s", opts.Command, r.tempDir)

	// Watch before starting the tool, so that no image is missed.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "new file change watcher")
	}
	r.watcher = watcher
	if err := watcher.Add(r.tempDir); err != nil {
		return nil, errors.Wrap(err, "registering file change watcher for temp dir")
	}
	go r.watch()

	var args []string
	if opts.Args != nil {
		args = opts.Args(r.tempDir)
	}
	r.logf("starting %s %s", opts.Command, strings.Join(args, " "))

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	cmd := exec.CommandContext(ctx, opts.Command, args...)
	cmd.Dir = r.tempDir
	if opts.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) && opts.InstallHint != "" {
			return nil, errors.Wrapf(vmb.StatusNoTL, "starting %s: executable not found, install with: %s", opts.Command, opts.InstallHint)
		}
		return nil, errors.Wrapf(err, "starting %s", opts.Command)
	}
	go func() {
		err := cmd.Wait()
		select {
		case <-r.closed:
		default:
			r.logf("%s exited: %v", opts.Command, err)
		}
	}()

	return r, nil
}

func (r *ToolRecorder) watch() {
	var last time.Time
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) || !ev.Has(r.opts.Op) || !strings.HasSuffix(ev.Name, ".jpg") {
				continue
			}
			now := time.Now()
			if now.Sub(last) < r.opts.Interval*9/10 {
				if err := os.Remove(ev.Name); err != nil && !os.IsNotExist(err) {
					r.logf("removing skipped image %q: %v", ev.Name, err)
				}
				continue
			}
			img, err := decode(ev.Name)
			if err != nil {
				r.logf("%v (may be partially written)", err)
				continue
			}
			if err := os.Remove(ev.Name); err != nil {
				r.logf("removing image %s: %v", ev.Name, err)
			}
			select {
			case r.events <- Event{Image: img}:
				last = now
			default:
				r.logf("dropping image, camera still busy")
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			select {
			case r.events <- Event{Err: errors.Wrap(err, "watching for changes")}:
			case <-r.closed:
				return
			}
		}
	}
}

func decode(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open written file %q", name)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding jpeg %q", name)
	}
	return img, nil
}

// Close shuts down the recorder, stopping the tool and removing the temporary
// directory.
func (r *ToolRecorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.closed)
		if r.cancel != nil {
			r.cancel()
		}
		if r.watcher != nil {
			r.watcher.Close()
		}
		if r.tempDir != "" {
			os.RemoveAll(r.tempDir)
		}
	})
	return nil
}
