// Package config holds the configuration of the acquisition commands: the
// program flags given on the command line, and runtime settings read from a
// config file and the environment.
package config

import (
	"fmt"
	"io"
	"strings"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/observer"
)

// ProgramConfig is the configuration given on the command line.
type ProgramConfig struct {
	FrameInfos       observer.FrameInfos
	RGB              bool
	ColorProcessing  observer.ColorProcessing
	CameraID         string
	PrintHelp        bool
	AllocAndAnnounce bool
}

// ObserverConfig returns the part of the configuration used by the frame
// observer.
func (c ProgramConfig) ObserverConfig() observer.Config {
	return observer.Config{
		FrameInfos:      c.FrameInfos,
		ColorProcessing: c.ColorProcessing,
		RGB:             c.RGB,
	}
}

// FrameAllocation returns the frame allocation mode selected with /x.
func (c ProgramConfig) FrameAllocation() vmb.FrameAllocation {
	if c.AllocAndAnnounce {
		return vmb.FrameAllocationAllocAndAnnounceFrame
	}
	return vmb.FrameAllocationAnnounceFrame
}

// ParseCommandline parses the arguments following the program name. Flags
// start with "/" or "-"; at most one other argument, the camera ID, may be
// given. Unknown flags, empty arguments and conflicting flags return
// vmb.StatusBadParameter. The config parsed so far is returned along with
// the error.
func ParseCommandline(args []string) (ProgramConfig, error) {
	var c ProgramConfig
	for _, arg := range args {
		if arg == "" {
			return c, vmb.StatusBadParameter
		}
		if arg[0] != '/' && arg[0] != '-' {
			if c.CameraID != "" {
				return c, vmb.StatusBadParameter
			}
			c.CameraID = arg
			continue
		}

		switch arg[1:] {
		case "i":
			if c.FrameInfos != observer.FrameInfosOff || c.PrintHelp {
				return c, vmb.StatusBadParameter
			}
			c.FrameInfos = observer.FrameInfosShow
		case "a":
			if c.FrameInfos != observer.FrameInfosOff || c.PrintHelp {
				return c, vmb.StatusBadParameter
			}
			c.FrameInfos = observer.FrameInfosAutomatic
		case "h":
			if c.CameraID != "" || c.PrintHelp || c.FrameInfos != observer.FrameInfosOff {
				return c, vmb.StatusBadParameter
			}
			c.PrintHelp = true
		case "r":
			if c.PrintHelp {
				return c, vmb.StatusBadParameter
			}
			c.RGB = true
		case "c":
			if c.ColorProcessing != observer.ColorProcessingOff || c.PrintHelp {
				return c, vmb.StatusBadParameter
			}
			c.ColorProcessing = observer.ColorProcessingMatrix
			c.RGB = true
		case "x":
			if c.PrintHelp {
				return c, vmb.StatusBadParameter
			}
			c.AllocAndAnnounce = true
		default:
			return c, vmb.StatusBadParameter
		}
	}
	return c, nil
}

// PrintHelp writes the usage of a program named name to w.
func PrintHelp(w io.Writer, name string) {
	lines := []string{
		fmt.Sprintf("Usage: %s [CameraID] [/i] [/a] [/h] [/r] [/c] [/x]", name),
		"Parameters: CameraID    ID of the camera to use (using first camera if not specified)",
		"            /i          Show frame infos",
		"            /a          Automatically only show frame infos of corrupt frames",
		"            /h          Print out help",
		"            /r          Convert to RGB and show RGB values",
		"            /c          Color correction (includes /r)",
		"            /x          Use AllocAndAnnounceFrame instead of AnnounceFrame",
		"Flags may also be written with a leading '-', e.g. -i.",
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
