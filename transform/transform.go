package transform

import (
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	vmb "github.com/vmbkit/vmb-go"
)

// Matrix is a 3x3 colour correction matrix in row-major order. Output red is
// m[0]*r + m[1]*g + m[2]*b, and so on for green and blue.
type Matrix [9]float32

// DefaultColorMatrix is the matrix applied when colour correction is enabled
// without an explicit matrix.
var DefaultColorMatrix = Matrix{
	0.6, 0.3, 0.1,
	0.6, 0.3, 0.1,
	0.6, 0.3, 0.1,
}

func clamp8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(float64(v)))
}

// Apply returns the corrected colour.
func (m *Matrix) Apply(c color.NRGBA) color.NRGBA {
	r, g, b := float32(c.R), float32(c.G), float32(c.B)
	return color.NRGBA{
		R: clamp8(m[0]*r + m[1]*g + m[2]*b),
		G: clamp8(m[3]*r + m[4]*g + m[5]*b),
		B: clamp8(m[6]*r + m[7]*g + m[8]*b),
		A: c.A,
	}
}

// Transform converts src into dst, which must have its format, geometry and
// a large enough Data buffer set, e.g. from ImageInfoFromString. Source and
// destination geometry must match. If m is not nil the colour correction
// matrix is applied.
func Transform(src, dst *Image, m *Matrix) error {
	if src == nil || dst == nil || src.Data == nil || dst.Data == nil {
		return vmb.StatusBadParameter
	}
	if src.Width != dst.Width || src.Height != dst.Height {
		return vmb.StatusBadParameter
	}
	if !supported(dst.Format) || dst.Format.IsBayer() {
		return vmb.StatusNotSupported
	}
	if len(dst.Data) < dst.ByteCount() {
		return vmb.StatusMoreData
	}
	img, err := toNRGBA(src)
	if err != nil {
		return err
	}
	if m != nil {
		img = imaging.AdjustFunc(img, m.Apply)
	}
	return fromNRGBA(img, dst)
}

// TransformFrame converts the buffer of frame f to the pixel format named by
// destFormat and returns the converted pixels. The first failing query on the
// frame is returned as error.
func TransformFrame(f vmb.Frame, destFormat string, m *Matrix) (*Image, error) {
	if f == nil {
		return nil, vmb.StatusBadParameter
	}
	pf, err := f.PixelFormat()
	if err != nil {
		return nil, err
	}
	width, err := f.Width()
	if err != nil {
		return nil, err
	}
	height, err := f.Height()
	if err != nil {
		return nil, err
	}
	src, err := ImageInfoFromPixelFormat(pf, int(width), int(height))
	if err != nil {
		return nil, err
	}
	src.Data, err = f.Buffer()
	if err != nil {
		return nil, err
	}
	dst, err := ImageInfoFromString(destFormat, int(width), int(height))
	if err != nil {
		return nil, err
	}
	dst.Data = make([]byte, dst.ByteCount())
	if err := Transform(&src, &dst, m); err != nil {
		return nil, err
	}
	return &dst, nil
}
