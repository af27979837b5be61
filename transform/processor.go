package transform

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	vmb "github.com/vmbkit/vmb-go"
)

// Sink receives every image converted by a Processor. Consume is called on
// the delivery goroutine and must not retain img after returning.
type Sink interface {
	Consume(img *Image)
}

// ProcessorOpts are options for a Processor.
type ProcessorOpts struct {
	RGB             bool    // Convert to RGB8 instead of BGR8.
	ColorCorrection bool    // Apply Matrix, or DefaultColorMatrix if Matrix is nil. Implies RGB.
	Matrix          *Matrix // Colour correction matrix.
	TraceDir        string  // If not empty, directory to write every converted frame to as PNG.
	Verbose         bool
	Sinks           []Sink
}

// Processor converts complete frames into an image with a fixed pixel
// format and keeps the most recent one.
type Processor struct {
	opts       ProcessorOpts
	destFormat string
	matrix     *Matrix

	mu   sync.Mutex
	last *Image
}

// NewProcessor returns a processor converting to BGR8, the channel order
// OpenCV expects, or to RGB8 if opts.RGB or opts.ColorCorrection is set.
func NewProcessor(opts *ProcessorOpts) *Processor {
	var xopts ProcessorOpts
	if opts != nil {
		xopts = *opts
	}
	p := &Processor{opts: xopts, destFormat: "BGR8"}
	if xopts.ColorCorrection {
		p.opts.RGB = true
		p.matrix = xopts.Matrix
		if p.matrix == nil {
			m := DefaultColorMatrix
			p.matrix = &m
		}
	}
	if p.opts.RGB {
		p.destFormat = "RGB8"
	}
	return p
}

// DestFormat returns the name of the pixel format frames are converted to.
func (p *Processor) DestFormat() string {
	return p.destFormat
}

// ProcessImage converts the frame and hands the result to the sinks.
func (p *Processor) ProcessImage(f vmb.Frame) (*Image, error) {
	img, err := TransformFrame(f, p.destFormat, p.matrix)
	if err != nil {
		return nil, err
	}

	if p.opts.TraceDir != "" {
		p.trace(f, img)
	}
	for _, s := range p.opts.Sinks {
		s.Consume(img)
	}

	p.mu.Lock()
	p.last = img
	p.mu.Unlock()
	return img, nil
}

func (p *Processor) trace(f vmb.Frame, img *Image) {
	id, err := f.ID()
	if err != nil {
		return
	}
	gimg, err := img.ToImage()
	if err != nil {
		log.Printf("trace, frame %d: %v", id, err)
		return
	}
	pngPath := filepath.Join(p.opts.TraceDir, fmt.Sprintf("frame-%d.png", id))
	if err := imaging.Save(gimg, pngPath); err != nil {
		log.Printf("trace, saving %s: %v", pngPath, err)
		return
	}
	if p.opts.Verbose {
		log.Printf("trace %s", pngPath)
	}
}

// Last returns the most recently converted image, nil if none.
func (p *Processor) Last() *Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
