// Package observer implements the frame observer of continuous acquisition:
// the callback invoked once per delivered frame. It keeps track of frame ids
// and arrival times to report missing frames and the frame rate, converts
// complete frames, and always hands the frame back to its camera.
package observer

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/transform"
)

// FrameInfos selects when details of a frame are printed.
type FrameInfos int

const (
	// FrameInfosOff prints nothing about frames.
	FrameInfosOff FrameInfos = iota
	// FrameInfosShow prints details for every frame.
	FrameInfosShow
	// FrameInfosAutomatic prints details only for frames with anomalies,
	// and a single "." for all others.
	FrameInfosAutomatic
)

// ColorProcessing selects the colour processing applied during conversion.
type ColorProcessing int

const (
	ColorProcessingOff ColorProcessing = iota
	ColorProcessingMatrix
)

// Config is fixed when an observer is created.
type Config struct {
	FrameInfos      FrameInfos
	ColorProcessing ColorProcessing
	RGB             bool // Print RGB values of the first pixel of converted frames.
}

// Processor converts a complete frame. *transform.Processor implements it.
type Processor interface {
	ProcessImage(f vmb.Frame) (*transform.Image, error)
}

var _ Processor = (*transform.Processor)(nil)

// Opts are options for an observer.
type Opts struct {
	Out        io.Writer        // Where frame infos are printed, os.Stdout if nil.
	Now        func() time.Time // Clock for frame rates, time.Now if nil.
	RateWindow int              // Number of frame rates averaged in Stats, 10 if 0.
	Verbose    bool
}

// Stats are running totals of an observer.
type Stats struct {
	Frames        uint64  // Callbacks, including null frames.
	NullFrames    uint64  // Callbacks without a frame.
	Incomplete    uint64  // Frames not converted because they were not complete.
	MissingFrames uint64  // Sum of gaps in frame ids.
	LastRate      float64 // Most recent valid frame rate, 0 if none.
	MeanRate      float64 // Moving average over the most recent valid frame rates.
}

// Observer is a vmb.FrameObserver for one camera.
type Observer struct {
	camera vmb.Camera
	cfg    Config
	proc   Processor
	out    io.Writer
	now    func() time.Time
	opts   Opts

	mu        sync.Mutex
	frameID   optional[uint64]
	frameTime optional[float64]
	rates     *vmb.MAF
	stats     Stats
}

var _ vmb.FrameObserver = (*Observer)(nil)

// New returns an observer that gives frames back to camera. Complete frames
// are passed to proc, which may be nil.
func New(camera vmb.Camera, cfg Config, proc Processor, opts *Opts) *Observer {
	var xopts Opts
	if opts != nil {
		xopts = *opts
	}
	if xopts.Out == nil {
		xopts.Out = os.Stdout
	}
	if xopts.Now == nil {
		xopts.Now = time.Now
	}
	if xopts.RateWindow <= 0 {
		xopts.RateWindow = 10
	}
	rates, _ := vmb.NewMAF(xopts.RateWindow)
	return &Observer{
		camera: camera,
		cfg:    cfg,
		proc:   proc,
		out:    xopts.Out,
		now:    xopts.Now,
		opts:   xopts,
		rates:  rates,
	}
}

func (o *Observer) logf(format string, args ...interface{}) {
	if o.opts.Verbose {
		log.Printf(format, args...)
	}
}

// FrameReceived handles one delivered frame. Calls are serialized.
func (o *Observer) FrameReceived(f vmb.Frame) {
	o.mu.Lock()
	defer o.mu.Unlock()

	defer func() {
		if err := o.camera.QueueFrame(f); err != nil {
			o.logf("queueing frame: %v", err)
		}
	}()

	o.stats.Frames++
	if f == nil {
		o.stats.NullFrames++
		fmt.Fprintf(o.out, "frame pointer NULL\n")
		return
	}

	if o.cfg.FrameInfos != FrameInfosOff {
		o.showFrameInfos(f)
	}

	status, err := f.ReceiveStatus()
	if err != nil || status != vmb.FrameStatusComplete {
		o.stats.Incomplete++
		fmt.Fprintf(o.out, "frame incomplete\n")
		return
	}
	if o.proc == nil {
		return
	}
	img, err := o.proc.ProcessImage(f)
	if err != nil {
		o.logf("converting frame: %v", err)
		return
	}
	if o.cfg.RGB && img != nil {
		if r, g, b, ok := img.RGBAt(0, 0); ok {
			fmt.Fprintf(o.out, "R = %d, G = %d, B = %d\n", r, g, b)
		}
	}
}

func (o *Observer) seconds() float64 {
	return float64(o.now().UnixNano()) / float64(time.Second)
}

func (o *Observer) showFrameInfos(f vmb.Frame) {
	show := o.cfg.FrameInfos == FrameInfosShow
	var rate float64
	rateValid := false

	id, err := f.ID()
	idValid := err == nil
	if idValid {
		var missing uint64
		prev, ok := o.frameID.get()
		// Any id other than prev+1 is a gap, even when nothing is missing.
		gap := ok && id != prev+1
		if gap && id > prev {
			missing = id - prev - 1
			o.stats.MissingFrames += missing
			if missing == 1 {
				fmt.Fprintf(o.out, "1 missing frame detected\n")
			} else {
				fmt.Fprintf(o.out, "%d missing frames detected\n", missing)
			}
		}
		o.frameID.set(id)

		now := o.seconds()
		if prev, ok := o.frameTime.get(); ok && !gap {
			if diff := now - prev; diff > 0 {
				rate = 1 / diff
				rateValid = true
				o.stats.LastRate = rate
				o.stats.MeanRate, _ = o.rates.Update(rate)
			} else {
				show = true
			}
		}
		o.frameTime.set(now)
	} else {
		show = true
		o.frameID.invalidate()
		o.frameTime.invalidate()
	}

	status, err := f.ReceiveStatus()
	statusValid := err == nil
	if !statusValid || status != vmb.FrameStatusComplete {
		show = true
	}

	if !show {
		fmt.Fprintf(o.out, ".")
		return
	}

	idText, statusText, rateText := "?", "?", "?"
	if idValid {
		idText = strconv.FormatUint(id, 10)
	}
	if statusValid {
		statusText = status.String()
	}
	if rateValid {
		rateText = strconv.FormatFloat(rate, 'f', 2, 64)
	}
	fmt.Fprintf(o.out, "Frame ID:%s Status:%s%s FPS:%s\n", idText, statusText, frameGeometry(f), rateText)
}

// frameGeometry returns the size and pixel format of f, with "?" for
// anything that cannot be read.
func frameGeometry(f vmb.Frame) string {
	width, height, format := "?", "?", "?"
	if w, err := f.Width(); err == nil {
		width = strconv.FormatUint(uint64(w), 10)
	}
	if h, err := f.Height(); err == nil {
		height = strconv.FormatUint(uint64(h), 10)
	}
	if pf, err := f.PixelFormat(); err == nil {
		format = fmt.Sprintf("0x%x", uint32(pf))
	}
	return fmt.Sprintf(" Size:%sx%s Format:%s", width, height, format)
}

// Stats returns the running totals.
func (o *Observer) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
