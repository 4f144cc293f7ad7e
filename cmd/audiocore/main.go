package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ledbeat/audiocore/internal/audiocore"
)

func main() {
	sourceKind := pflag.StringP("source", "s", "portaudio", "Audio capture backend: portaudio|synthetic")
	presetName := pflag.StringP("preset", "p", "Default", "Starting tuning preset")
	storeDir := pflag.StringP("store-dir", "d", "./audiocore-config", "Directory for persisted preset/noise-floor config")
	cpu := pflag.Int("cpu", -1, "CPU core to pin the audio thread to (-1 to skip pinning)")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - realtime audio analysis core for an LED control system.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *verbose {
		audiocore.Logger.SetLevel(log.DebugLevel)
	}

	preset := audiocore.PresetDefault
	for _, p := range audiocore.TuningPresets {
		if p.String() == *presetName {
			preset = p
		}
	}

	var source audiocore.AudioSource
	switch *sourceKind {
	case "portaudio":
		source = audiocore.NewPortAudioSource()
	case "synthetic":
		source = audiocore.NewSyntheticSource(audiocore.SineSegment(0, 220, 8000))
	default:
		fmt.Fprintf(os.Stderr, "unknown --source %q\n", *sourceKind)
		os.Exit(1)
	}

	store, err := audiocore.NewFileConfigStore(*storeDir)
	if err != nil {
		audiocore.Logger.Error("config store init failed", "err", err)
		os.Exit(1)
	}
	if !pflag.CommandLine.Changed("preset") {
		if saved, loadErr := audiocore.LoadPreset(store); loadErr == nil {
			preset = saved
		}
	}

	core := audiocore.NewAudioCore(source, preset, *cpu)

	if floors, ok, loadErr := audiocore.LoadNoiseFloors(store); loadErr == nil && ok {
		t := core.Tuning().Read()
		t.PerBandNoiseFloors = floors
		t.UsePerBandNoiseFloor = true
		core.Tuning().Write(t)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	audiocore.Logger.Info("starting audio core", "source", *sourceKind, "preset", preset.String())
	if err := core.Run(ctx); err != nil {
		audiocore.Logger.Error("audio core exited with error", "err", err)
		os.Exit(1)
	}
}
