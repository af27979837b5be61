//go:build !gocv

package main

import (
	"io"
	"log"

	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/transform"
)

func newSinks(settings config.Settings) ([]transform.Sink, func()) {
	if settings.Show {
		log.Printf("show is set, but frames can only be shown when built with -tags gocv")
	}
	return nil, func() {}
}

func showWhile(sinks []transform.Sink, wait func(io.Writer)) func(io.Writer) {
	return wait
}
