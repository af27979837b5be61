package capture_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/capture"
)

func TestClosestCap(t *testing.T) {
	caps := []capture.DeviceCap{
		{Width: 1920, Height: 1080},
		{Width: 640, Height: 480},
		{Width: 1280, Height: 720},
	}
	c, ok := capture.ClosestCap(caps, 1300, 700)
	require.True(t, ok)
	assert.Equal(t, capture.DeviceCap{Width: 1280, Height: 720}, c)

	c, _ = capture.ClosestCap(caps, 320, 240)
	assert.Equal(t, capture.DeviceCap{Width: 640, Height: 480}, c)

	_, ok = capture.ClosestCap(nil, 640, 480)
	assert.False(t, ok)
}

// putJPEG writes a JPEG under a temporary name in dir and renames it, so
// that the recorder sees a single create event for a complete file. The
// rename stays within dir since dir may be on its own filesystem.
func putJPEG(t *testing.T, dir, name string, c color.Color) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	tmp := filepath.Join(dir, name+".part")
	require.NoError(t, os.WriteFile(tmp, buf.Bytes(), 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func TestToolRecorder(t *testing.T) {
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("no sleep command")
	}
	r, err := capture.StartTool(capture.ToolOpts{
		Command: "sleep",
		Args:    func(dir string) []string { return []string{"30"} },
		Op:      fsnotify.Create,
	})
	require.NoError(t, err)
	dir := r.Dir()
	require.DirExists(t, dir)

	received := make(chan capture.Event, 1)
	go func() {
		ev := <-r.Events()
		received <- ev
	}()
	// Give the receiver time to block on the channel; images are dropped
	// while nobody receives.
	time.Sleep(50 * time.Millisecond)
	putJPEG(t, dir, "frame1.jpg", color.RGBA{R: 200, G: 100, B: 50, A: 255})

	select {
	case ev := <-received:
		require.NoError(t, ev.Err)
		assert.Equal(t, image.Rect(0, 0, 8, 6), ev.Image.Bounds())
		r8, g8, b8, _ := ev.Image.At(3, 3).RGBA()
		assert.InDelta(t, 200, r8>>8, 4)
		assert.InDelta(t, 100, g8>>8, 4)
		assert.InDelta(t, 50, b8>>8, 4)
	case <-time.After(5 * time.Second):
		t.Fatal("no image received")
	}

	// Read images are removed.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "frame1.jpg"))
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.NoDirExists(t, dir)
}

func TestToolNotFound(t *testing.T) {
	_, err := capture.StartTool(capture.ToolOpts{
		Command:     "vmb-no-such-capture-tool",
		InstallHint: "apt install vmb-no-such-capture-tool",
	})
	require.Error(t, err)
	assert.Equal(t, vmb.StatusNoTL, vmb.StatusOf(err))
	assert.Contains(t, err.Error(), "apt install vmb-no-such-capture-tool")
}
