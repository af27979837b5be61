package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/vmbtest"
)

func TestListCameras(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "cameras.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("cameras:\n  - id: DEV_1\n    name: One\n    model: M1\n    serial: \"42\"\n  - id: DEV_2\n    serial: \"43\"\n"), 0o600))
	settings := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("profile: "+profile+"\n"), 0o600))
	t.Setenv("VMB_SETTINGS", settings)

	var out bytes.Buffer
	require.Equal(t, 0, main0(&out))
	assert.Equal(t, "Vmb API Version 1.0.0\n"+
		"Cameras found: 2\n\n"+
		"/// Camera Name    : One\n"+
		"/// Model Name     : M1\n"+
		"/// Camera ID      : DEV_1\n"+
		"/// Serial Number  : 42\n"+
		"/// @ Interface ID : sim0\n\n"+
		"/// Camera Name    : Simulated Camera\n"+
		"/// Model Name     : SIM\n"+
		"/// Camera ID      : DEV_2\n"+
		"/// Serial Number  : 43\n"+
		"/// @ Interface ID : sim0\n\n", out.String())
}

func TestListCamerasBadSettings(t *testing.T) {
	t.Setenv("VMB_SETTINGS", filepath.Join(t.TempDir(), "missing.yaml"))
	var out bytes.Buffer
	assert.Equal(t, int(vmb.StatusBadParameter), main0(&out))
}

func TestPrintCameraInfo(t *testing.T) {
	var out bytes.Buffer
	printCameraInfo(&out, &vmbtest.Camera{CamID: "DEV_9", CamInfo: vmb.CameraInfo{ID: "DEV_9", Name: "Nine", Model: "M9", SerialNumber: "9", InterfaceID: "eth0"}})
	assert.Equal(t, "/// Camera Name    : Nine\n"+
		"/// Model Name     : M9\n"+
		"/// Camera ID      : DEV_9\n"+
		"/// Serial Number  : 9\n"+
		"/// @ Interface ID : eth0\n\n", out.String())
}
