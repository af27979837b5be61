package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	vmb "github.com/vmbkit/vmb-go"
)

// Runtimes that can be selected with the "runtime" setting.
const (
	RuntimeSim       = "sim"
	RuntimeGstreamer = "gstreamer"
	RuntimeFfmpeg    = "ffmpeg"
	RuntimeImagesnap = "imagesnap"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. VMB_RUNTIME=gstreamer.
const EnvPrefix = "VMB"

// Settings select and tune the camera runtime used by the commands.
type Settings struct {
	Runtime  string        // One of the Runtime constants.
	Profile  string        // Camera profile for the sim runtime, built-in cameras if empty.
	TraceDir string        // If not empty, converted frames are written here as PNG.
	Verbose  bool          // Print verbose logging.
	Interval time.Duration // Time between images taken from capture tools, a default if 0.
	Show     bool          // Show converted frames in a window, only in builds with the gocv tag.
}

// LoadSettings reads settings from the file at path, or when path is empty,
// from asyncgrab.yaml in the working directory or $HOME/.vmb if present.
// Environment variables with EnvPrefix override the file.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	v.SetDefault("runtime", RuntimeSim)
	v.SetDefault("profile", "")
	v.SetDefault("trace_dir", "")
	v.SetDefault("verbose", false)
	v.SetDefault("interval", "0s")
	v.SetDefault("show", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.Wrapf(vmb.StatusBadParameter, "reading settings %s: %v", path, err)
		}
	} else {
		v.SetConfigName("asyncgrab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(os.ExpandEnv("$HOME/.vmb"))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Settings{}, errors.Wrapf(vmb.StatusBadParameter, "reading settings: %v", err)
			}
		}
	}

	s := Settings{
		Runtime:  strings.ToLower(v.GetString("runtime")),
		Profile:  v.GetString("profile"),
		TraceDir: v.GetString("trace_dir"),
		Verbose:  v.GetBool("verbose"),
		Interval: v.GetDuration("interval"),
		Show:     v.GetBool("show"),
	}
	switch s.Runtime {
	case RuntimeSim, RuntimeGstreamer, RuntimeFfmpeg, RuntimeImagesnap:
	default:
		return Settings{}, errors.Wrapf(vmb.StatusBadParameter, "unknown runtime %q", s.Runtime)
	}
	if s.Interval < 0 {
		return Settings{}, errors.Wrapf(vmb.StatusBadParameter, "negative interval %v", s.Interval)
	}
	return s, nil
}
