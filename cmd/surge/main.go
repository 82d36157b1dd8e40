// Package main provides the surge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/surge-ml/surge/backend/wgpu"
)

const version = "v0.1.0-dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("surge %s\n", version)
			return
		case "devices":
			listDevices()
			return
		}
	}

	fmt.Println("surge - device-array numeric compute for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  devices    List available accelerator devices")
}

func listDevices() {
	if !wgpu.IsAvailable() {
		fmt.Println("No WebGPU adapter available (host driver only)")
		return
	}
	ctx, err := wgpu.New(0)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize WebGPU")
		os.Exit(1)
	}
	defer ctx.Close()

	info := ctx.AdapterInfo()
	fmt.Printf("device 0: %s\n", ctx.Name())
	if info != nil {
		fmt.Printf("  backend: %v\n", info.BackendType)
		fmt.Printf("  driver:  %s\n", info.Description)
	}
}
