package vmb

import (
	"os"
)

// TempDir returns a new directory for frames written by capture tools. Frames
// are written and removed at the camera's frame rate, so a memory-backed
// /dev/shm is preferred when present. prefix names the directory.
func TempDir(prefix string) (string, error) {
	// Only use /dev/shm if it already exists, never create anything in /dev.
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		if dir, err := os.MkdirTemp("/dev/shm", prefix); err == nil {
			return dir, nil
		}
	}
	return os.MkdirTemp("", prefix)
}
