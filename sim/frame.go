package sim

import (
	vmb "github.com/vmbkit/vmb-go"
)

// Frame is a frame buffer announced to a simulated camera.
type Frame struct {
	cam *Camera

	id        uint64
	timestamp uint64
	status    vmb.FrameStatus
	width     uint32
	height    uint32
	format    vmb.PixelFormat
	data      []byte
}

var _ vmb.Frame = (*Frame)(nil)

func (f *Frame) ID() (uint64, error)                     { return f.id, nil }
func (f *Frame) Timestamp() (uint64, error)              { return f.timestamp, nil }
func (f *Frame) ReceiveStatus() (vmb.FrameStatus, error) { return f.status, nil }
func (f *Frame) Width() (uint32, error)                  { return f.width, nil }
func (f *Frame) Height() (uint32, error)                 { return f.height, nil }
func (f *Frame) PixelFormat() (vmb.PixelFormat, error)   { return f.format, nil }
func (f *Frame) Buffer() ([]byte, error)                 { return f.data, nil }

// fill writes a diagonal gradient that moves by one pixel per frame.
func (f *Frame) fill(id, timestamp uint64, status vmb.FrameStatus) {
	f.id = id
	f.timestamp = timestamp
	f.status = status

	bpp := f.format.BitsPerPixel() / 8
	w, h := int(f.width), int(f.height)
	for y := 0; y < h; y++ {
		row := f.data[y*w*bpp : (y+1)*w*bpp]
		for x := 0; x < w; x++ {
			v := byte(x + y + int(id))
			for k := 0; k < bpp; k++ {
				row[x*bpp+k] = v + byte(k*85)
			}
		}
	}
}
