package audiocore

// TuningPipeline is the validated, clamped DSP parameter set mutable from
// the render side of the program (spec §3's TuningPipeline). Every
// numeric field has a defined valid range enforced by Clamp.
type TuningPipeline struct {
	// DCAlpha is persisted and exposed over the config/API surface for
	// parity with the field the original firmware's tuning struct carries,
	// but the DC blocker's pole is fixed (DefaultDCAlpha) and does not read
	// this value: the original never wired its equivalent field into the
	// actual filter either, only into its web API serializer.
	DCAlpha float32

	// AGC.
	AGCTargetRMS      float32
	AGCMinGain        float32
	AGCMaxGain        float32
	AGCAttack         float32
	AGCRelease        float32
	AGCClipReduce     float32
	AGCIdleReturnRate float32

	// Noise floor.
	NoiseFloorMin           float32
	NoiseFloorRise          float32
	NoiseFloorFall          float32
	PerBandNoiseFloors      [NumBands]float32
	UsePerBandNoiseFloor    bool

	// Gate.
	GateStartFactor float32
	GateRangeFactor float32
	GateRangeMin    float32

	// dB mapping.
	RMSDbFloor    float32
	RMSDbCeil     float32
	BandDbFloor   float32
	BandDbCeil    float32
	ChromaDbFloor float32
	ChromaDbCeil  float32
	FluxScale     float32

	// Smoothing.
	AlphaFast        float32
	AlphaSlow        float32
	BandAttack       float32
	BandRelease      float32
	HeavyBandAttack  float32
	HeavyBandRelease float32

	// Per-band gains (GoertzelAnalyzer).
	PerBandGains [NumBands]float32

	// Silence.
	SilenceHysteresisMs float32
	SilenceThreshold    float32

	// Novelty.
	UseSpectralFlux    bool
	SpectralFluxScale  float32

	// Adaptive 64-bin normalization.
	Bins64AdaptiveScale float32
	Bins64AdaptiveFloor float32
	Bins64AdaptiveRise  float32
	Bins64AdaptiveFall  float32
	Bins64AdaptiveDecay float32

	// Lookahead despike / zone AGC / chord (ControlBus, spec §4.9).
	SpikeThreshold        float32
	DespikeEnabled        bool
	ZoneAGCEnabled        bool
	ZoneAttack            float32
	ZoneRelease           float32
	ZoneMinFloor          float32
	ChordMinorThreshold   float32
	ChordTriadRatioMin    float32
}

// tuningRange expresses a valid [lo,hi] range for a float field, used both
// by Clamp and by the named presets so every override is self-documenting.
type tuningRange struct{ lo, hi float32 }

// These ranges mirror original_source's clampAudioPipelineTuning /
// clampAudioContractTuning exactly (AudioTuning.h).
var (
	rangeDCAlpha          = tuningRange{1e-6, 0.1}
	rangeAGCTargetRMS     = tuningRange{0.01, 1.0}
	rangeAGCMinGain       = tuningRange{0.1, 50.0}
	rangeAGCMaxGain       = tuningRange{1.0, 500.0}
	rangeAGCRate          = tuningRange{0.0, 1.0}
	rangeAGCClipReduce    = tuningRange{0.1, 1.0}
	rangeNoiseFloorMin    = tuningRange{0.0, 0.1}
	rangeNoiseFloorRate   = tuningRange{0.0, 1.0}
	rangeGateFactor       = tuningRange{0.0, 10.0}
	rangeGateRangeMin     = tuningRange{0.0, 0.1}
	rangeDb               = tuningRange{-120, 0}
	rangeFluxScale        = tuningRange{0.0, 10.0}
	rangeAlpha            = tuningRange{0.0, 1.0}
	rangeBandRate         = tuningRange{0.0, 1.0}
	rangeGain             = tuningRange{0.1, 10.0}
	rangePerBandFloor     = tuningRange{0.0, 0.1}
	rangeSilenceMs        = tuningRange{0, 60000}
	rangeSilenceThreshold = tuningRange{0.0, 1.0}
	rangeNoveltyFluxScale = tuningRange{0.1, 10.0}
	rangeBins64Scale      = tuningRange{0.1, 1000.0}
	rangeBins64Floor      = tuningRange{0.01, 1000.0}
	rangeBins64Rate       = tuningRange{0.0, 1.0}
	rangeBins64Decay      = tuningRange{0.0, 1.0}
	rangeSpikeThreshold   = tuningRange{0.0, 1.0}
	rangeChordThreshold   = tuningRange{0.0, 1.0}
)

func (r tuningRange) clamp(v float32) float32 { return clampf32(v, r.lo, r.hi) }

// DefaultTuning returns the "Default" preset, matching the original
// firmware's Sensory-Bridge-derived defaults (original_source
// AudioPipelineTuning / AGC / NoiseFloor defaults), generalized from fixed
// bin counts to this package's NumBands/NumChroma/NumBins64.
func DefaultTuning() TuningPipeline {
	t := TuningPipeline{
		DCAlpha: 0.001,

		AGCTargetRMS:      0.25,
		AGCMinGain:        1.0,
		AGCMaxGain:        40.0,
		AGCAttack:         0.03,
		AGCRelease:        0.015,
		AGCClipReduce:     0.90,
		AGCIdleReturnRate: 0.01,

		NoiseFloorMin:  0.0004,
		NoiseFloorRise: 0.0005,
		NoiseFloorFall: 0.01,

		GateStartFactor: 1.0,
		GateRangeFactor: 1.5,
		GateRangeMin:    0.0005,

		RMSDbFloor: -65, RMSDbCeil: -12,
		BandDbFloor: -65, BandDbCeil: -12,
		ChromaDbFloor: -65, ChromaDbCeil: -12,
		FluxScale: 1.0,

		AlphaFast: 0.35, AlphaSlow: 0.12,
		BandAttack: 0.15, BandRelease: 0.03,
		HeavyBandAttack: 0.08, HeavyBandRelease: 0.015,

		PerBandGains: [NumBands]float32{0.8, 0.85, 1.0, 1.2, 1.5, 1.8, 2.0, 2.2},

		PerBandNoiseFloors: [NumBands]float32{
			0.0008, 0.0012, 0.0006, 0.0005, 0.0008, 0.0010, 0.0012, 0.0006,
		},

		SilenceHysteresisMs: 5000,
		SilenceThreshold:    0.01,

		UseSpectralFlux:   true,
		SpectralFluxScale: 1.0,

		Bins64AdaptiveScale: 200.0,
		Bins64AdaptiveFloor: 4.0,
		Bins64AdaptiveRise:  0.0050,
		Bins64AdaptiveFall:  0.0025,
		Bins64AdaptiveDecay: 0.995,

		SpikeThreshold:      0.15,
		DespikeEnabled:      true,
		ZoneAGCEnabled:      true,
		ZoneAttack:          0.2,
		ZoneRelease:         0.01,
		ZoneMinFloor:        0.05,
		ChordMinorThreshold: 0.5,
		ChordTriadRatioMin:  0.3,
	}
	t.Clamp()
	return t
}

// Clamp validates every field in place to its documented range, matching
// spec §7's "configuration errors are silently clamped" contract: a
// RenderTask writer never receives a validation error.
func (t *TuningPipeline) Clamp() {
	t.DCAlpha = rangeDCAlpha.clamp(t.DCAlpha)

	t.AGCTargetRMS = rangeAGCTargetRMS.clamp(t.AGCTargetRMS)
	t.AGCMinGain = rangeAGCMinGain.clamp(t.AGCMinGain)
	t.AGCMaxGain = rangeAGCMaxGain.clamp(t.AGCMaxGain)
	if t.AGCMaxGain < t.AGCMinGain {
		t.AGCMaxGain = t.AGCMinGain
	}
	t.AGCAttack = rangeAGCRate.clamp(t.AGCAttack)
	t.AGCRelease = rangeAGCRate.clamp(t.AGCRelease)
	t.AGCClipReduce = rangeAGCClipReduce.clamp(t.AGCClipReduce)
	t.AGCIdleReturnRate = rangeAGCRate.clamp(t.AGCIdleReturnRate)

	t.NoiseFloorMin = rangeNoiseFloorMin.clamp(t.NoiseFloorMin)
	t.NoiseFloorRise = rangeNoiseFloorRate.clamp(t.NoiseFloorRise)
	t.NoiseFloorFall = rangeNoiseFloorRate.clamp(t.NoiseFloorFall)
	for i := range t.PerBandNoiseFloors {
		t.PerBandNoiseFloors[i] = rangePerBandFloor.clamp(t.PerBandNoiseFloors[i])
	}

	t.GateStartFactor = rangeGateFactor.clamp(t.GateStartFactor)
	t.GateRangeFactor = rangeGateFactor.clamp(t.GateRangeFactor)
	t.GateRangeMin = rangeGateRangeMin.clamp(t.GateRangeMin)

	t.RMSDbFloor = rangeDb.clamp(t.RMSDbFloor)
	t.RMSDbCeil = rangeDb.clamp(t.RMSDbCeil)
	t.BandDbFloor = rangeDb.clamp(t.BandDbFloor)
	t.BandDbCeil = rangeDb.clamp(t.BandDbCeil)
	t.ChromaDbFloor = rangeDb.clamp(t.ChromaDbFloor)
	t.ChromaDbCeil = rangeDb.clamp(t.ChromaDbCeil)
	t.FluxScale = rangeFluxScale.clamp(t.FluxScale)

	t.AlphaFast = rangeAlpha.clamp(t.AlphaFast)
	t.AlphaSlow = rangeAlpha.clamp(t.AlphaSlow)
	t.BandAttack = rangeBandRate.clamp(t.BandAttack)
	t.BandRelease = rangeBandRate.clamp(t.BandRelease)
	t.HeavyBandAttack = rangeBandRate.clamp(t.HeavyBandAttack)
	t.HeavyBandRelease = rangeBandRate.clamp(t.HeavyBandRelease)

	for i := range t.PerBandGains {
		t.PerBandGains[i] = rangeGain.clamp(t.PerBandGains[i])
	}

	t.SilenceHysteresisMs = rangeSilenceMs.clamp(t.SilenceHysteresisMs)
	t.SilenceThreshold = rangeSilenceThreshold.clamp(t.SilenceThreshold)

	t.SpectralFluxScale = rangeNoveltyFluxScale.clamp(t.SpectralFluxScale)

	t.Bins64AdaptiveScale = rangeBins64Scale.clamp(t.Bins64AdaptiveScale)
	t.Bins64AdaptiveFloor = rangeBins64Floor.clamp(t.Bins64AdaptiveFloor)
	t.Bins64AdaptiveRise = rangeBins64Rate.clamp(t.Bins64AdaptiveRise)
	t.Bins64AdaptiveFall = rangeBins64Rate.clamp(t.Bins64AdaptiveFall)
	t.Bins64AdaptiveDecay = rangeBins64Decay.clamp(t.Bins64AdaptiveDecay)

	t.SpikeThreshold = rangeSpikeThreshold.clamp(t.SpikeThreshold)
	t.ZoneAttack = rangeAGCRate.clamp(t.ZoneAttack)
	t.ZoneRelease = rangeAGCRate.clamp(t.ZoneRelease)
	t.ZoneMinFloor = clamp01(t.ZoneMinFloor)
	t.ChordMinorThreshold = rangeChordThreshold.clamp(t.ChordMinorThreshold)
	t.ChordTriadRatioMin = rangeChordThreshold.clamp(t.ChordTriadRatioMin)
}

// TuningContract holds the beat/time parameters RenderTask may mutate
// independently of TuningPipeline (spec §3's TuningContract), validated
// the same way.
type TuningContract struct {
	BPMMin              float32
	BPMMax              float32
	BPMTau              float32
	ConfidenceTau       float32
	PhaseCorrectionGain float32
	BarCorrectionGain   float32
	BeatsPerBar         uint8
	BeatUnit            uint8
	AudioStalenessMs    float32
}

// DefaultTuningContract returns the tempo-tracker defaults, matching
// original_source's AudioContractTuning defaults exactly.
func DefaultTuningContract() TuningContract {
	c := TuningContract{
		BPMMin:              30,
		BPMMax:              300,
		BPMTau:              0.50,
		ConfidenceTau:       1.00,
		PhaseCorrectionGain: 0.35,
		BarCorrectionGain:   0.20,
		BeatsPerBar:         4,
		BeatUnit:            4,
		AudioStalenessMs:    100,
	}
	c.Clamp()
	return c
}

// Clamp validates every field in place, matching original_source's
// clampAudioContractTuning exactly.
func (c *TuningContract) Clamp() {
	c.BPMMin = clampf32(c.BPMMin, 20, 200)
	c.BPMMax = clampf32(c.BPMMax, 60, 400)
	if c.BPMMax < c.BPMMin+1 {
		c.BPMMax = c.BPMMin + 1
	}
	c.BPMTau = clampf32(c.BPMTau, 0.01, 10)
	c.ConfidenceTau = clampf32(c.ConfidenceTau, 0.01, 10)
	c.PhaseCorrectionGain = clamp01(c.PhaseCorrectionGain)
	c.BarCorrectionGain = clamp01(c.BarCorrectionGain)
	if c.BeatsPerBar == 0 {
		c.BeatsPerBar = 4
	}
	if c.BeatUnit == 0 {
		c.BeatUnit = 4
	}
	if c.BeatsPerBar > 12 {
		c.BeatsPerBar = 12
	}
	if c.BeatUnit > 16 {
		c.BeatUnit = 16
	}
	c.AudioStalenessMs = clampf32(c.AudioStalenessMs, 10, 1000)
}
