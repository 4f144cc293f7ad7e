package audiocore

// ChordType classifies a detected triad (spec §4.9 step 5). Grounded on
// original_source's ChordType enum (contracts/ControlBus.h).
type ChordType uint8

const (
	ChordNone ChordType = iota
	ChordMajor
	ChordMinor
	ChordDiminished
	ChordAugmented
)

func (c ChordType) String() string {
	switch c {
	case ChordMajor:
		return "Major"
	case ChordMinor:
		return "Minor"
	case ChordDiminished:
		return "Diminished"
	case ChordAugmented:
		return "Augmented"
	default:
		return "None"
	}
}

// ChordState is the published chord-detection result.
type ChordState struct {
	RootNote      uint8
	Type          ChordType
	Confidence    float32
	RootStrength  float32
	ThirdStrength float32
	FifthStrength float32
}

// Saliency holds the four musical-saliency scalars computed each hop
// (spec §4.9 step 6).
type Saliency struct {
	Harmonic       float32
	Rhythmic       float32
	Timbral        float32
	DynamicNovelty float32
}

// MusicStyle is the coarse style classification published each hop
// (spec §4.9 step 7).
type MusicStyle uint8

const (
	StyleUnknown MusicStyle = iota
	StyleAmbient
	StyleElectronic
	StyleAcoustic
	StylePercussive
)

func (s MusicStyle) String() string {
	switch s {
	case StyleAmbient:
		return "Ambient"
	case StyleElectronic:
		return "Electronic"
	case StyleAcoustic:
		return "Acoustic"
	case StylePercussive:
		return "Percussive"
	default:
		return "Unknown"
	}
}

// ControlBusRawInput is the unsmoothed, per-hop measurement set produced
// by the DSP components before ControlBus processing (spec §3's
// ControlBusRawInput).
type ControlBusRawInput struct {
	RMS  float32
	Flux float32

	Bands  [NumBands]float32
	Chroma [NumChroma]float32

	Waveform Hop
	Bins64   [NumBins64]float32

	SnareEnergy  float32
	HihatEnergy  float32
	SnareTrigger bool
	HihatTrigger bool

	TempoLocked     bool
	TempoConfidence float32
	TempoBeatTick   bool
}

// ControlBusFrame is the publishable per-hop payload (spec §3's
// ControlBusFrame), the sole cross-core handoff payload.
type ControlBusFrame struct {
	T      AudioTime
	HopSeq uint32

	RMS      float32
	Flux     float32
	FastRMS  float32
	FastFlux float32

	Bands        [NumBands]float32
	Chroma       [NumChroma]float32
	HeavyBands   [NumBands]float32
	HeavyChroma  [NumChroma]float32

	Waveform [Waveform128Len]int16
	Bins64   [NumBins64]float32

	ChordState ChordState
	Saliency   Saliency

	CurrentStyle    MusicStyle
	StyleConfidence float32

	SnareEnergy  float32
	HihatEnergy  float32
	SnareTrigger bool
	HihatTrigger bool

	TempoLocked     bool
	TempoConfidence float32
	TempoBeatTick   bool

	SilentScale float32
	IsSilent    bool
}

// SpikeDetectionStats tracks the effectiveness of lookahead despiking
// (spec §4.9 step 2), grounded on original_source's SpikeDetectionStats.
type SpikeDetectionStats struct {
	TotalFrames          uint32
	SpikesDetectedBands   uint32
	SpikesDetectedChroma  uint32
	SpikesCorrected       uint32
	TotalEnergyRemoved    float32
}
