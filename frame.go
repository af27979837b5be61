package vmb

import (
	"fmt"
	"strings"
)

// FrameStatus is the receive status of a frame.
type FrameStatus int32

// Receive statuses as reported by a Frame.
const (
	FrameStatusComplete   FrameStatus = 0
	FrameStatusIncomplete FrameStatus = -1
	FrameStatusTooSmall   FrameStatus = -2
	FrameStatusInvalid    FrameStatus = -3
)

func (s FrameStatus) String() string {
	switch s {
	case FrameStatusComplete:
		return "Complete"
	case FrameStatusIncomplete:
		return "Incomplete"
	case FrameStatusTooSmall:
		return "Too small"
	case FrameStatusInvalid:
		return "Invalid"
	}
	return "unknown frame status"
}

// PixelFormat is a GenICam pixel format naming convention (PFNC) code. Bits
// 16 to 23 of the code hold the number of bits per pixel.
type PixelFormat uint32

// Pixel formats known to this module.
const (
	PixelFormatMono8    PixelFormat = 0x01080001
	PixelFormatBayerGR8 PixelFormat = 0x01080008
	PixelFormatBayerRG8 PixelFormat = 0x01080009
	PixelFormatBayerGB8 PixelFormat = 0x0108000A
	PixelFormatBayerBG8 PixelFormat = 0x0108000B
	PixelFormatRGB8     PixelFormat = 0x02180014
	PixelFormatBGR8     PixelFormat = 0x02180015
	PixelFormatRGBA8    PixelFormat = 0x02200016
	PixelFormatBGRA8    PixelFormat = 0x02200017
)

var pixelFormatNames = []struct {
	format PixelFormat
	name   string
}{
	{PixelFormatMono8, "Mono8"},
	{PixelFormatBayerGR8, "BayerGR8"},
	{PixelFormatBayerRG8, "BayerRG8"},
	{PixelFormatBayerGB8, "BayerGB8"},
	{PixelFormatBayerBG8, "BayerBG8"},
	{PixelFormatRGB8, "RGB8"},
	{PixelFormatBGR8, "BGR8"},
	{PixelFormatRGBA8, "RGBA8"},
	{PixelFormatBGRA8, "BGRA8"},
}

// BitsPerPixel returns the number of bits occupied by one pixel.
func (p PixelFormat) BitsPerPixel() int {
	return int((uint32(p) >> 16) & 0xff)
}

// IsBayer returns whether the format is a raw Bayer mosaic.
func (p PixelFormat) IsBayer() bool {
	switch p {
	case PixelFormatBayerGR8, PixelFormatBayerRG8, PixelFormatBayerGB8, PixelFormatBayerBG8:
		return true
	}
	return false
}

func (p PixelFormat) String() string {
	for _, n := range pixelFormatNames {
		if n.format == p {
			return n.name
		}
	}
	return fmt.Sprintf("0x%x", uint32(p))
}

// ParsePixelFormat returns the pixel format with the given name, for example
// "Mono8" or "BGR8". Names are matched case-insensitively.
func ParsePixelFormat(name string) (PixelFormat, error) {
	for _, n := range pixelFormatNames {
		if strings.EqualFold(n.name, name) {
			return n.format, nil
		}
	}
	return 0, StatusBadParameter
}
