package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ledbeat/audiocore/internal/audiocore"
)

// gentone is a development tool: it drives a SyntheticSource through one
// of a few canned test signals and writes the resulting mono 16kHz PCM
// to a WAV file, for feeding into an external analyzer during manual
// testing. cmd/audiocore has no WAV-file input; its --source=synthetic is
// a fixed built-in sine.
func main() {
	kind := pflag.StringP("signal", "k", "sine", "Signal to generate: sine|click|silence")
	freq := pflag.Float64P("freq", "f", 440, "Sine frequency in Hz (signal=sine)")
	bpm := pflag.Float64P("bpm", "b", 120, "Click-train tempo in BPM (signal=click)")
	seconds := pflag.Float64P("seconds", "s", 5, "Duration in seconds")
	out := pflag.StringP("out", "o", "tone.wav", "Output WAV path")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - generate test tones/click trains for audiocore development.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	totalSamples := uint64(*seconds * audiocore.SampleRateHz)

	var source *audiocore.SyntheticSource
	switch *kind {
	case "sine":
		source = audiocore.NewSyntheticSource(audiocore.SineSegment(totalSamples, *freq, 20000))
	case "click":
		periodSamples := uint64(audiocore.SampleRateHz * 60 / *bpm)
		source = audiocore.NewSyntheticSource(audiocore.ClickTrainSegment(totalSamples, periodSamples, periodSamples/10, 24000))
	case "silence":
		source = audiocore.NewSyntheticSource(audiocore.SilenceSegment(totalSamples))
	default:
		fmt.Fprintf(os.Stderr, "unknown --signal %q\n", *kind)
		os.Exit(1)
	}

	samples := make([]int16, 0, totalSamples)
	var hop audiocore.Hop
	for uint64(len(samples)) < totalSamples {
		if res := source.CaptureHop(&hop); res != audiocore.CaptureOK {
			fmt.Fprintf(os.Stderr, "unexpected capture result %s\n", res)
			os.Exit(1)
		}
		samples = append(samples, hop[:]...)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := writeWAV(f, samples, audiocore.SampleRateHz); err != nil {
		fmt.Fprintf(os.Stderr, "write wav: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d samples (%.2fs) to %s\n", len(samples), float64(len(samples))/audiocore.SampleRateHz, *out)
}

// writeWAV writes a minimal mono 16-bit PCM WAV file. No ecosystem WAV
// encoder appeared anywhere in the reference pack, so this uses
// encoding/binary directly rather than reaching for an unrelated format
// library.
func writeWAV(f *os.File, samples []int16, sampleRateHz uint32) error {
	dataSize := uint32(len(samples) * 2)
	byteRate := sampleRateHz * 2

	w := func(v any) error { return binary.Write(f, binary.LittleEndian, v) }

	if _, err := f.WriteString("RIFF"); err != nil {
		return err
	}
	if err := w(uint32(36 + dataSize)); err != nil {
		return err
	}
	if _, err := f.WriteString("WAVE"); err != nil {
		return err
	}
	if _, err := f.WriteString("fmt "); err != nil {
		return err
	}
	if err := w(uint32(16)); err != nil { // fmt chunk size
		return err
	}
	if err := w(uint16(1)); err != nil { // PCM
		return err
	}
	if err := w(uint16(1)); err != nil { // mono
		return err
	}
	if err := w(sampleRateHz); err != nil {
		return err
	}
	if err := w(byteRate); err != nil {
		return err
	}
	if err := w(uint16(2)); err != nil { // block align
		return err
	}
	if err := w(uint16(16)); err != nil { // bits per sample
		return err
	}
	if _, err := f.WriteString("data"); err != nil {
		return err
	}
	if err := w(dataSize); err != nil {
		return err
	}
	return w(samples)
}
