package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/observer"
)

func TestParseCommandline(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected config.ProgramConfig
	}{
		{"no arguments", nil, config.ProgramConfig{}},
		{"camera id", []string{"DEV_000F315B91E2"}, config.ProgramConfig{CameraID: "DEV_000F315B91E2"}},
		{"frame infos", []string{"/i", "cam"}, config.ProgramConfig{FrameInfos: observer.FrameInfosShow, CameraID: "cam"}},
		{"automatic", []string{"-a"}, config.ProgramConfig{FrameInfos: observer.FrameInfosAutomatic}},
		{"rgb", []string{"/r"}, config.ProgramConfig{RGB: true}},
		{"color correction implies rgb", []string{"/c"}, config.ProgramConfig{ColorProcessing: observer.ColorProcessingMatrix, RGB: true}},
		{"rgb and color correction", []string{"/r", "/c"}, config.ProgramConfig{ColorProcessing: observer.ColorProcessingMatrix, RGB: true}},
		{"alloc and announce", []string{"/x", "/a"}, config.ProgramConfig{AllocAndAnnounce: true, FrameInfos: observer.FrameInfosAutomatic}},
		{"help", []string{"/h"}, config.ProgramConfig{PrintHelp: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := config.ParseCommandline(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseCommandlineBadParameter(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty argument", []string{""}},
		{"two camera ids", []string{"a", "b"}},
		{"show and automatic", []string{"/i", "/a"}},
		{"show twice", []string{"/i", "/i"}},
		{"help after camera", []string{"cam", "/h"}},
		{"help after show", []string{"/i", "/h"}},
		{"help twice", []string{"/h", "/h"}},
		{"show after help", []string{"/h", "/i"}},
		{"rgb after help", []string{"/h", "/r"}},
		{"color twice", []string{"/c", "/c"}},
		{"alloc after help", []string{"/h", "/x"}},
		{"unknown flag", []string{"/z"}},
		{"bare slash", []string{"/"}},
		{"long flag", []string{"--info"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseCommandline(tt.args)
			assert.Equal(t, vmb.StatusBadParameter, vmb.StatusOf(err))
		})
	}
}

func TestProgramConfigDerived(t *testing.T) {
	c, err := config.ParseCommandline([]string{"/x", "/c", "/a"})
	require.NoError(t, err)
	assert.Equal(t, vmb.FrameAllocationAllocAndAnnounceFrame, c.FrameAllocation())
	assert.Equal(t, observer.Config{
		FrameInfos:      observer.FrameInfosAutomatic,
		ColorProcessing: observer.ColorProcessingMatrix,
		RGB:             true,
	}, c.ObserverConfig())

	var empty config.ProgramConfig
	assert.Equal(t, vmb.FrameAllocationAnnounceFrame, empty.FrameAllocation())
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	config.PrintHelp(&buf, "asyncgrab")
	assert.Contains(t, buf.String(), "Usage: asyncgrab [CameraID]")
	assert.Contains(t, buf.String(), "/c          Color correction (includes /r)")
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := config.LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, config.RuntimeSim, s.Runtime)
	assert.Equal(t, time.Duration(0), s.Interval)
}

func TestLoadSettingsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asyncgrab.yaml")
	data := "runtime: gstreamer\ninterval: 250ms\ntrace_dir: /tmp/frames\nverbose: true\nshow: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, config.Settings{
		Runtime:  config.RuntimeGstreamer,
		TraceDir: "/tmp/frames",
		Verbose:  true,
		Interval: 250 * time.Millisecond,
		Show:     true,
	}, s)

	t.Setenv("VMB_RUNTIME", "ffmpeg")
	s, err = config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, config.RuntimeFfmpeg, s.Runtime)
}

func TestLoadSettingsErrors(t *testing.T) {
	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, vmb.StatusBadParameter, vmb.StatusOf(err))

	t.Setenv("VMB_RUNTIME", "v4l2")
	_, err = config.LoadSettings("")
	assert.Equal(t, vmb.StatusBadParameter, vmb.StatusOf(err))
}
