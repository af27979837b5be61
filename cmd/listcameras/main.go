// Command listcameras starts the camera runtime and prints the details of
// every camera it knows.
//
// The runtime is selected with the same settings as asyncgrab, e.g.
//
//	VMB_RUNTIME=ffmpeg listcameras
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"

	vmb "github.com/vmbkit/vmb-go"
	"github.com/vmbkit/vmb-go/config"
	"github.com/vmbkit/vmb-go/internal/backend"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) > 1 {
		log.Println("usage: listcameras")
		os.Exit(2)
	}
	os.Exit(main0(os.Stdout))
}

func main0(stdout io.Writer) int {
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

	if v, err := system.Version(); err == nil {
		fmt.Fprintf(stdout, "Vmb API Version %s\n", v)
	}

	red := color.New(color.FgRed)
	if err := system.Startup(); err != nil {
		red.Fprintf(stdout, "Could not start system. Error code: %d(%s)\n", int(vmb.StatusOf(err)), vmb.ErrorCodeToMessage(err))
		return int(vmb.StatusOf(err))
	}
	defer system.Shutdown()

	cameras, err := system.Cameras()
	if err != nil {
		red.Fprintf(stdout, "Could not list cameras. Error code: %d(%s)\n", int(vmb.StatusOf(err)), vmb.ErrorCodeToMessage(err))
		if settings.Verbose {
			log.Printf("%v", err)
		}
		return int(vmb.StatusOf(err))
	}

	fmt.Fprintf(stdout, "Cameras found: %d\n\n", len(cameras))
	for _, c := range cameras {
		printCameraInfo(stdout, c)
	}
	return 0
}

func printCameraInfo(w io.Writer, c vmb.Camera) {
	info, err := c.Info()
	if err != nil {
		// Print what is known, the id at least.
		info.ID, _ = c.ID()
	}
	fmt.Fprintf(w, "/// Camera Name    : %s\n", info.Name)
	fmt.Fprintf(w, "/// Model Name     : %s\n", info.Model)
	fmt.Fprintf(w, "/// Camera ID      : %s\n", info.ID)
	fmt.Fprintf(w, "/// Serial Number  : %s\n", info.SerialNumber)
	fmt.Fprintf(w, "/// @ Interface ID : %s\n\n", info.InterfaceID)
}
