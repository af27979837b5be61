//go:build gocv

package main

import (
	"io"
	"log"
	"runtime"

	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/transform"
	"github.com/vmbkit/vmb-go/transform/cvmat"
)

// OpenCV windows must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

func newSinks(settings config.Settings) ([]transform.Sink, func()) {
	if !settings.Show {
		return nil, func() {}
	}
	w := cvmat.NewWindow("Streaming Vmb", settings.Verbose)
	return []transform.Sink{w}, func() {
		if err := w.Close(); err != nil {
			log.Printf("closing window: %v", err)
		}
	}
}

// showWhile returns a wait function that shows the window on the calling
// goroutine while wait runs on another.
func showWhile(sinks []transform.Sink, wait func(io.Writer)) func(io.Writer) {
	for _, s := range sinks {
		w, ok := s.(*cvmat.Window)
		if !ok {
			continue
		}
		return func(stdout io.Writer) {
			done := make(chan struct{})
			go func() {
				defer close(done)
				wait(stdout)
			}()
			w.Run(done)
		}
	}
	return wait
}
