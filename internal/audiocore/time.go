// Package audiocore implements the realtime audio analysis and musical-time
// pipeline for an audio-reactive LED control system: a fixed-cadence
// pipeline that turns a mono microphone stream into a compact control frame
// describing instantaneous audio features and musical timing.
package audiocore

// HopSize is the fixed number of 16-bit mono samples captured and processed
// per AudioTask iteration.
const HopSize = 256

// SampleRateHz is the canonical capture sample rate. Hop duration at this
// rate is 16ms.
const SampleRateHz = 16000

// WindowSize is the sliding analysis window used by the Goertzel and chroma
// analyzers: two hops per window fill.
const WindowSize = 512

// Waveform128Len is the length of the time-domain waveform snapshot carried
// in each published frame.
const Waveform128Len = 128

// NumBands is the number of perceptual Goertzel bands.
const NumBands = 8

// NumChroma is the number of pitch classes in a chromagram.
const NumChroma = 12

// NumBins64 is the width of the high-resolution sub-bass/tempo-novelty
// Goertzel bank.
const NumBins64 = 64

// NumZones is the number of frequency zones used by zone AGC (2 bands per
// zone over NumBands, 3 chroma bins per zone over NumChroma).
const NumZones = 4

// AudioTime is the monotonic timestamp carried by every published frame.
// SampleIndex is the authoritative clock; wall-clock times are derived from
// it, never the reverse.
type AudioTime struct {
	SampleIndex  uint64
	SampleRateHz uint32
}

// Advance returns the AudioTime for the next successful hop capture.
func (t AudioTime) Advance() AudioTime {
	return AudioTime{SampleIndex: t.SampleIndex + HopSize, SampleRateHz: t.SampleRateHz}
}

// Hop is a contiguous block of HopSize 16-bit mono samples.
type Hop [HopSize]int16
