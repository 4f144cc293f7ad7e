package audiocore

// PresetName identifies one of the named tuning presets (spec §3's
// TuningPresets table). Grounded on original_source's AudioPreset enum
// and getPreset() (AudioTuning.h), each preset starts from DefaultTuning
// and overrides a handful of fields — the same deltas the original
// firmware's A/B-testing presets apply.
type PresetName uint8

const (
	PresetDefault PresetName = iota
	PresetLightwaveV2
	PresetSensoryBridge
	PresetAggressiveAGC
	PresetConservative
	PresetLGPSmooth
)

// String returns the display name used for logging and persistence keys.
func (p PresetName) String() string {
	switch p {
	case PresetDefault:
		return "Default"
	case PresetLightwaveV2:
		return "LightwaveOS v2"
	case PresetSensoryBridge:
		return "Sensory Bridge"
	case PresetAggressiveAGC:
		return "Aggressive AGC"
	case PresetConservative:
		return "Conservative AGC"
	case PresetLGPSmooth:
		return "LGP Smooth"
	default:
		return "Unknown"
	}
}

// ApplyPreset returns a clamped TuningPipeline for the named preset,
// starting from DefaultTuning and applying that preset's deltas.
func ApplyPreset(p PresetName) TuningPipeline {
	t := DefaultTuning()

	switch p {
	case PresetDefault:
		// No overrides: DefaultTuning already reflects the firmware's
		// baseline AudioPipelineTuning{} values.

	case PresetLightwaveV2:
		t.AGCAttack = 0.08
		t.AGCRelease = 0.02
		t.AlphaFast = 0.35
		t.AlphaSlow = 0.12
		t.SilenceHysteresisMs = 10000

	case PresetSensoryBridge:
		t.AGCAttack = 0.25
		t.AGCRelease = 0.005
		t.AlphaFast = 0.45
		t.AlphaSlow = 0.225
		t.SilenceHysteresisMs = 10000
		t.SilenceThreshold = 0.005
		t.NoiseFloorMin = 0.0006

	case PresetAggressiveAGC:
		t.AGCAttack = 0.35
		t.AGCRelease = 0.001
		t.AGCMaxGain = 200.0
		t.AlphaFast = 0.5
		t.AlphaSlow = 0.3
		t.SilenceHysteresisMs = 5000

	case PresetConservative:
		t.AGCAttack = 0.03
		t.AGCRelease = 0.05
		t.AGCMaxGain = 50.0
		t.AlphaFast = 0.25
		t.AlphaSlow = 0.08
		t.SilenceHysteresisMs = 15000
		t.SilenceThreshold = 0.02

	case PresetLGPSmooth:
		t.AGCAttack = 0.06
		t.AGCRelease = 0.015
		t.AlphaFast = 0.20
		t.AlphaSlow = 0.06
		t.BandAttack = 0.12
		t.BandRelease = 0.025
		t.HeavyBandAttack = 0.06
		t.HeavyBandRelease = 0.012
		t.PerBandGains = [NumBands]float32{0.8, 0.85, 1.0, 1.2, 1.5, 1.8, 2.0, 2.2}
		t.PerBandNoiseFloors = [NumBands]float32{
			0.0008, 0.0012, 0.0006, 0.0005, 0.0008, 0.0010, 0.0012, 0.0006,
		}
		t.UsePerBandNoiseFloor = true
		t.SilenceHysteresisMs = 8000
	}

	t.Clamp()
	return t
}

// TuningPresets lists every named preset in table order, matching
// spec §3's "TuningPresets table provides named presets" description.
var TuningPresets = []PresetName{
	PresetDefault,
	PresetLightwaveV2,
	PresetSensoryBridge,
	PresetAggressiveAGC,
	PresetConservative,
	PresetLGPSmooth,
}
