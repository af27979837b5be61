//go:build gocv

// Package cvmat hands converted images to OpenCV. It is only built with the
// gocv build tag, as it needs OpenCV installed.
package cvmat

import (
	"log"

	"gocv.io/x/gocv"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/transform"
)

// MatType returns the OpenCV matrix type holding images of format.
func MatType(format vmb.PixelFormat) (gocv.MatType, error) {
	switch format {
	case vmb.PixelFormatMono8, vmb.PixelFormatBayerGR8, vmb.PixelFormatBayerRG8, vmb.PixelFormatBayerGB8, vmb.PixelFormatBayerBG8:
		return gocv.MatTypeCV8UC1, nil
	case vmb.PixelFormatRGB8, vmb.PixelFormatBGR8:
		return gocv.MatTypeCV8UC3, nil
	case vmb.PixelFormatRGBA8, vmb.PixelFormatBGRA8:
		return gocv.MatTypeCV8UC4, nil
	}
	return 0, vmb.StatusNotSupported
}

// ToMat copies img into a new matrix with the same channel layout. Callers
// must Close the matrix.
func ToMat(img *transform.Image) (gocv.Mat, error) {
	if img == nil || len(img.Data) < img.ByteCount() {
		return gocv.Mat{}, vmb.StatusBadParameter
	}
	t, err := MatType(img.Format)
	if err != nil {
		return gocv.Mat{}, err
	}
	return gocv.NewMatFromBytes(img.Height, img.Width, t, img.Data[:img.ByteCount()])
}

// ToBGR copies img into a new BGR matrix, the layout OpenCV displays and
// writes. Callers must Close the matrix.
func ToBGR(img *transform.Image) (gocv.Mat, error) {
	src, err := ToMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	code, ok := map[vmb.PixelFormat]gocv.ColorConversionCode{
		vmb.PixelFormatMono8:    gocv.ColorGrayToBGR,
		vmb.PixelFormatRGB8:     gocv.ColorRGBToBGR,
		vmb.PixelFormatRGBA8:    gocv.ColorRGBAToBGR,
		vmb.PixelFormatBGRA8:    gocv.ColorBGRAToBGR,
		// OpenCV names Bayer patterns after the second row.
		vmb.PixelFormatBayerRG8: gocv.ColorBayerBGToBGR,
		vmb.PixelFormatBayerGR8: gocv.ColorBayerGBToBGR,
		vmb.PixelFormatBayerGB8: gocv.ColorBayerGRToBGR,
		vmb.PixelFormatBayerBG8: gocv.ColorBayerRGToBGR,
	}[img.Format]
	if !ok {
		return src, nil
	}
	defer src.Close()
	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, code); err != nil {
		dst.Close()
		return gocv.Mat{}, err
	}
	return dst, nil
}

// Window is a transform.Sink showing images in an OpenCV window.
//
// OpenCV's GUI calls must run on the main OS thread, while Consume runs on
// the delivery goroutine. Consume only converts and queues the newest image;
// Run, called from the main thread, opens the window and shows them.
type Window struct {
	name    string
	verbose bool
	mats    chan gocv.Mat
}

var _ transform.Sink = (*Window)(nil)

// NewWindow returns a sink for a window called name. The window itself is
// opened by Run.
func NewWindow(name string, verbose bool) *Window {
	return &Window{name: name, verbose: verbose, mats: make(chan gocv.Mat, 1)}
}

// Consume converts img to BGR and queues it for Run, replacing an image
// that was not shown yet.
func (w *Window) Consume(img *transform.Image) {
	m, err := ToBGR(img)
	if err != nil {
		if w.verbose {
			log.Printf("showing %s image: %v", img.Format, err)
		}
		return
	}
	for {
		select {
		case w.mats <- m:
			return
		default:
		}
		select {
		case old := <-w.mats:
			old.Close()
		default:
		}
	}
}

// Run opens the window and shows queued images until done is closed. It
// must be called from the main OS thread.
func (w *Window) Run(done <-chan struct{}) {
	win := gocv.NewWindow(w.name)
	defer win.Close()
	for {
		select {
		case <-done:
			return
		case m := <-w.mats:
			win.IMShow(m)
			m.Close()
		default:
		}
		win.WaitKey(10)
	}
}

// Close releases an image that was queued but not shown.
func (w *Window) Close() error {
	select {
	case m := <-w.mats:
		return m.Close()
	default:
	}
	return nil
}
