package sim

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	vmb "github.com/vmbkit/vmb-go"
)

// Range is the range of an integer feature.
type Range struct {
	Min       int64 `mapstructure:"min"`
	Max       int64 `mapstructure:"max"`
	Increment int64 `mapstructure:"increment"`
}

// CameraProfile describes one simulated camera.
type CameraProfile struct {
	ID          string  `mapstructure:"id"`
	Name        string  `mapstructure:"name"`
	Model       string  `mapstructure:"model"`
	Serial      string  `mapstructure:"serial"`
	InterfaceID string  `mapstructure:"interface"`
	Width       Range   `mapstructure:"width"`
	Height      Range   `mapstructure:"height"`
	PixelFormat string  `mapstructure:"pixel_format"`
	FrameRate   float64 `mapstructure:"frame_rate"`

	// DropEvery loses every n-th frame id before delivery, 0 for none.
	DropEvery uint64 `mapstructure:"drop_every"`

	// IncompleteEvery marks every n-th frame as incomplete, 0 for none.
	IncompleteEvery uint64 `mapstructure:"incomplete_every"`
}

// Profile lists the cameras of a simulated system.
type Profile struct {
	Cameras []CameraProfile `mapstructure:"cameras"`
}

// DefaultProfile returns a profile with a single colour camera. Its maximum
// width is odd so that the geometry has to be adjusted before transforming.
func DefaultProfile() Profile {
	return Profile{
		Cameras: []CameraProfile{
			{
				ID:          "DEV_SIM0000001",
				Name:        "Simulated Camera",
				Model:       "SIM-1281C",
				Serial:      "0000001",
				InterfaceID: "sim0",
				Width:       Range{Min: 8, Max: 1281, Increment: 1},
				Height:      Range{Min: 8, Max: 963, Increment: 1},
				PixelFormat: "BayerRG8",
				FrameRate:   30,
			},
		},
	}
}

// LoadProfile reads a profile from a YAML, JSON or TOML file.
func LoadProfile(path string) (Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Profile{}, errors.Wrapf(vmb.StatusBadParameter, "reading camera profile %s: %v", path, err)
	}
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, errors.Wrapf(vmb.StatusBadParameter, "parsing camera profile %s: %v", path, err)
	}
	if err := p.normalize(); err != nil {
		return Profile{}, errors.Wrapf(err, "camera profile %s", path)
	}
	return p, nil
}

// normalize fills in defaults and checks the profile.
func (p *Profile) normalize() error {
	if len(p.Cameras) == 0 {
		return errors.Wrap(vmb.StatusBadParameter, "no cameras")
	}
	seen := map[string]bool{}
	for i := range p.Cameras {
		c := &p.Cameras[i]
		if c.Serial == "" {
			c.Serial = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
		}
		if c.ID == "" {
			c.ID = "DEV_" + c.Serial
		}
		if seen[c.ID] {
			return errors.Wrapf(vmb.StatusBadParameter, "duplicate camera id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" {
			c.Name = "Simulated Camera"
		}
		if c.Model == "" {
			c.Model = "SIM"
		}
		if c.InterfaceID == "" {
			c.InterfaceID = "sim0"
		}
		if c.PixelFormat == "" {
			c.PixelFormat = "Mono8"
		}
		if _, err := vmb.ParsePixelFormat(c.PixelFormat); err != nil {
			return errors.Wrapf(err, "camera %s: pixel format %q", c.ID, c.PixelFormat)
		}
		if c.FrameRate <= 0 {
			c.FrameRate = 30
		}
		for _, d := range []struct {
			r   *Range
			max int64
		}{{&c.Width, 640}, {&c.Height, 480}} {
			r := d.r
			if r.Increment <= 0 {
				r.Increment = 1
			}
			if r.Min <= 0 {
				r.Min = r.Increment
			}
			if r.Max == 0 {
				r.Max = d.max
			}
			if r.Max < r.Min {
				return errors.Wrapf(vmb.StatusBadParameter, "camera %s: range max %d below min %d", c.ID, r.Max, r.Min)
			}
		}
	}
	return nil
}
