// Package backend creates the camera runtime selected by the settings of the
// commands.
package backend

import (
	"github.com/pkg/errors"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/sim"
	"github.com/vmbkit/vmb-go/toolcam"
)

// New returns the runtime for s.Runtime. The runtime is not started.
func New(s config.Settings) (vmb.System, error) {
	switch s.Runtime {
	case config.RuntimeSim, "":
		opts := &sim.Opts{Verbose: s.Verbose}
		if s.Profile != "" {
			p, err := sim.LoadProfile(s.Profile)
			if err != nil {
				return nil, err
			}
			opts.Profile = &p
		}
		return sim.NewSystem(opts), nil
	}

	tool, err := toolcam.ToolByName(s.Runtime)
	if err != nil {
		return nil, errors.Wrap(err, "selecting runtime")
	}
	return toolcam.NewSystem(toolcam.Opts{
		Tool:     tool,
		Interval: s.Interval,
		Verbose:  s.Verbose,
	}), nil
}
