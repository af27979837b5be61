// Package transform converts frame buffers between pixel formats, with an
// optional 3x3 colour correction matrix, and implements the frame processor
// used by the acquisition controller.
package transform

import (
	"image"
	"image/color"

	vmb "github.com/vmbkit/vmb-go"
)

// Image describes a buffer of pixels in a given format.
type Image struct {
	Format vmb.PixelFormat
	Width  int
	Height int
	Data   []byte
}

// ByteCount returns the number of bytes needed to hold the image.
func (im *Image) ByteCount() int {
	return im.Format.BitsPerPixel() * im.Width * im.Height / 8
}

func supported(pf vmb.PixelFormat) bool {
	switch pf {
	case vmb.PixelFormatMono8,
		vmb.PixelFormatBayerGR8, vmb.PixelFormatBayerRG8, vmb.PixelFormatBayerGB8, vmb.PixelFormatBayerBG8,
		vmb.PixelFormatRGB8, vmb.PixelFormatBGR8, vmb.PixelFormatRGBA8, vmb.PixelFormatBGRA8:
		return true
	}
	return false
}

// ImageInfoFromPixelFormat returns an Image without data for the given format
// and geometry.
func ImageInfoFromPixelFormat(pf vmb.PixelFormat, width, height int) (Image, error) {
	if !supported(pf) {
		return Image{}, vmb.StatusNotSupported
	}
	if width <= 0 || height <= 0 {
		return Image{}, vmb.StatusBadParameter
	}
	return Image{Format: pf, Width: width, Height: height}, nil
}

// ImageInfoFromString is like ImageInfoFromPixelFormat, with the format given
// by name, e.g. "BGR8".
func ImageInfoFromString(name string, width, height int) (Image, error) {
	pf, err := vmb.ParsePixelFormat(name)
	if err != nil {
		return Image{}, err
	}
	return ImageInfoFromPixelFormat(pf, width, height)
}

// RGBAt returns the colour of the pixel at x, y. Bayer images report the raw
// sample in all three channels.
func (im *Image) RGBAt(x, y int) (r, g, b uint8, ok bool) {
	if x < 0 || y < 0 || x >= im.Width || y >= im.Height {
		return 0, 0, 0, false
	}
	bpp := im.Format.BitsPerPixel() / 8
	o := (y*im.Width + x) * bpp
	if o+bpp > len(im.Data) {
		return 0, 0, 0, false
	}
	p := im.Data[o : o+bpp]
	switch im.Format {
	case vmb.PixelFormatRGB8, vmb.PixelFormatRGBA8:
		return p[0], p[1], p[2], true
	case vmb.PixelFormatBGR8, vmb.PixelFormatBGRA8:
		return p[2], p[1], p[0], true
	}
	return p[0], p[0], p[0], true
}

// ToImage returns the pixels as an image.Image. Mono images are returned as
// *image.Gray, all others as *image.NRGBA.
func (im *Image) ToImage() (image.Image, error) {
	if im.Format == vmb.PixelFormatMono8 {
		if len(im.Data) < im.ByteCount() {
			return nil, vmb.StatusBadParameter
		}
		g := image.NewGray(image.Rect(0, 0, im.Width, im.Height))
		copy(g.Pix, im.Data)
		return g, nil
	}
	return toNRGBA(im)
}

// bayerOffsets returns the position of the red and blue sample in a 2x2
// cell, numbered top-left, top-right, bottom-left, bottom-right.
func bayerOffsets(pf vmb.PixelFormat) (red, blue int) {
	switch pf {
	case vmb.PixelFormatBayerGR8:
		return 1, 2
	case vmb.PixelFormatBayerRG8:
		return 0, 3
	case vmb.PixelFormatBayerGB8:
		return 2, 1
	}
	return 3, 0 // BayerBG8
}

func toNRGBA(src *Image) (*image.NRGBA, error) {
	if !supported(src.Format) {
		return nil, vmb.StatusNotSupported
	}
	if len(src.Data) < src.ByteCount() {
		return nil, vmb.StatusBadParameter
	}
	w, h := src.Width, src.Height
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if src.Format.IsBayer() {
		if w%2 != 0 || h%2 != 0 {
			return nil, vmb.StatusBadParameter
		}
		red, blue := bayerOffsets(src.Format)
		for y := 0; y < h; y += 2 {
			for x := 0; x < w; x += 2 {
				cell := [4]byte{
					src.Data[y*w+x], src.Data[y*w+x+1],
					src.Data[(y+1)*w+x], src.Data[(y+1)*w+x+1],
				}
				var green int
				for i, v := range cell {
					if i != red && i != blue {
						green += int(v)
					}
				}
				c := color.NRGBA{cell[red], uint8(green / 2), cell[blue], 0xff}
				dst.SetNRGBA(x, y, c)
				dst.SetNRGBA(x+1, y, c)
				dst.SetNRGBA(x, y+1, c)
				dst.SetNRGBA(x+1, y+1, c)
			}
		}
		return dst, nil
	}

	bpp := src.Format.BitsPerPixel() / 8
	for i, o := 0, 0; i < w*h; i, o = i+1, o+bpp {
		p := src.Data[o : o+bpp]
		d := dst.Pix[i*4 : i*4+4]
		switch src.Format {
		case vmb.PixelFormatMono8:
			d[0], d[1], d[2] = p[0], p[0], p[0]
		case vmb.PixelFormatRGB8, vmb.PixelFormatRGBA8:
			d[0], d[1], d[2] = p[0], p[1], p[2]
		case vmb.PixelFormatBGR8, vmb.PixelFormatBGRA8:
			d[0], d[1], d[2] = p[2], p[1], p[0]
		}
		d[3] = 0xff
	}
	return dst, nil
}

func fromNRGBA(img *image.NRGBA, dst *Image) error {
	w, h := dst.Width, dst.Height
	bpp := dst.Format.BitsPerPixel() / 8
	for i, o := 0, 0; i < w*h; i, o = i+1, o+bpp {
		s := img.Pix[i*4 : i*4+4]
		d := dst.Data[o : o+bpp]
		switch dst.Format {
		case vmb.PixelFormatMono8:
			d[0] = uint8((299*int(s[0]) + 587*int(s[1]) + 114*int(s[2]) + 500) / 1000)
		case vmb.PixelFormatRGB8:
			d[0], d[1], d[2] = s[0], s[1], s[2]
		case vmb.PixelFormatBGR8:
			d[0], d[1], d[2] = s[2], s[1], s[0]
		case vmb.PixelFormatRGBA8:
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3]
		case vmb.PixelFormatBGRA8:
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		default:
			return vmb.StatusNotSupported
		}
	}
	return nil
}
