// Command asyncgrab streams frames from a camera and prints information about
// each frame until <enter> is pressed, or until it is interrupted when stdin
// is not a terminal.
//
// Examples:
//
//	# Stream from the first camera, printing every frame.
//	asyncgrab /i
//
//	# Stream from a given camera, printing only anomalies, and print the
//	# first pixel of every colour corrected frame.
//	asyncgrab DEV_SIM0000001 /a /c
//
//	# Capture from a webcam with gstreamer.
//	VMB_RUNTIME=gstreamer asyncgrab /i
//
// Settings are read from asyncgrab.yaml in the working directory or in
// $HOME/.vmb, or from the file named by $VMB_SETTINGS, and can be overridden
// with VMB_ environment variables, e.g. VMB_RUNTIME, VMB_PROFILE,
// VMB_TRACE_DIR, VMB_VERBOSE, VMB_INTERVAL and VMB_SHOW.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/controller"
	"github.com/vmbkit/vmb-go/internal/backend"
)

const banner = "///////////////////////////////////////////\n" +
	"///   Vmb API Asynchronous Grab Example   ///\n" +
	"///////////////////////////////////////////\n\n"

func main() {
	log.SetFlags(0)
	os.Exit(main0(os.Args[1:], os.Stdout, waitForStop))
}

// main0 runs the command and returns the status code. wait blocks until
// acquisition should stop.
func main0(args []string, stdout io.Writer, wait func(stdout io.Writer)) int {
	fmt.Fprint(stdout, banner)

	cfg, err := config.ParseCommandline(args)
	if vmb.StatusOf(err) == vmb.StatusBadParameter {
		fmt.Fprint(stdout, "Invalid parameters!\n\n")
		cfg.PrintHelp = true
	}
	if cfg.PrintHelp {
		config.PrintHelp(stdout, "asyncgrab")
		return int(vmb.StatusOf(err))
	}

	settings, err := config.LoadSettings(os.Getenv("VMB_SETTINGS"))
	if err != nil {
		log.Printf("loading settings: %v", err)
		return int(vmb.StatusOf(err))
	}
	system, err := backend.New(settings)
	if err != nil {
		log.Printf("creating %s runtime: %v", settings.Runtime, err)
		return int(vmb.StatusOf(err))
	}

	sinks, closeSinks := newSinks(settings)
	defer closeSinks()

	c := controller.New(system, &controller.Opts{
		Out:      stdout,
		TraceDir: settings.TraceDir,
		Sinks:    sinks,
		Verbose:  settings.Verbose,
	})
	fmt.Fprintf(stdout, "Vmb API Version %s\n", c.Version())

	err = run(c, cfg, stdout, showWhile(sinks, wait))
	if err == nil {
		fmt.Fprint(stdout, "\nAcquisition stopped.\n")
		if settings.Verbose {
			s := c.Stats()
			log.Printf("frames %d, incomplete %d, missing %d, null %d, mean FPS %.2f", s.Frames, s.Incomplete, s.MissingFrames, s.NullFrames, s.MeanRate)
		}
		return 0
	}
	color.New(color.FgRed).Fprintf(stdout, "\nAn error occurred: %s\n", c.ErrorCodeToMessage(err))
	if settings.Verbose {
		log.Printf("%v", err)
	}
	return int(vmb.StatusOf(err))
}

func run(c *controller.Controller, cfg config.ProgramConfig, stdout io.Writer, wait func(stdout io.Writer)) error {
	if err := c.StartUp(); err != nil {
		return err
	}
	defer c.ShutDown()

	if cfg.CameraID == "" {
		cameras := c.Cameras()
		if len(cameras) == 0 {
			return vmb.StatusNotFound
		}
		id, err := cameras[0].ID()
		if err != nil {
			return err
		}
		cfg.CameraID = id
	}

	fmt.Fprintf(stdout, "Opening camera with ID: %s\n", cfg.CameraID)
	if err := c.StartContinuousImageAcquisition(cfg); err != nil {
		return err
	}
	wait(stdout)
	// The stop status is not part of the result.
	if err := c.StopContinuousImageAcquisition(); err != nil {
		log.Printf("stopping acquisition: %v", err)
	}
	return nil
}

// waitForStop waits for <enter> on a terminal, or else for a signal.
func waitForStop(stdout io.Writer) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(stdout, "Press Ctrl-C to stop acquisition...\n")
		<-signals
		return
	}

	fmt.Fprint(stdout, "Press <enter> to stop acquisition...\n")
	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()
	select {
	case <-enter:
	case <-signals:
	}
}
