package audiocore

import "math"

// AGC implements spec §4.3's target-RMS automatic gain control with
// asymmetric attack/release, clip reduction, and an idle-return behavior
// that stops amplifying near-silence. It is distinct from (and simpler
// than) the per-bin Rhythm/Harmony AGC banks of the original firmware's K1
// rewrite (original_source k1/AGC.{h,cpp}); this one operates on the
// full-band mic RMS as spec.md §4.3 specifies.
type AGC struct {
	gain float32
}

// NewAGC returns an AGC with unity gain.
func NewAGC() *AGC { return &AGC{gain: 1.0} }

// Gain returns the current gain.
func (a *AGC) Gain() float32 { return a.gain }

// Reset returns the AGC to unity gain.
func (a *AGC) Reset() { a.gain = 1.0 }

// rmsOf computes the normalized RMS ([0,1], full scale = 32768) of a hop.
func rmsOf(hop *Hop) float32 {
	var sumSq float64
	for _, s := range hop {
		v := float64(s) / 32768.0
		sumSq += v * v
	}
	return float32(math.Sqrt(sumSq / float64(len(hop))))
}

// isClipping reports whether any sample in the hop exceeds the clip
// threshold (near full scale).
func isClipping(hop *Hop, thresholdAbs int16) bool {
	for _, s := range hop {
		v := s
		if v < 0 {
			v = -v
		}
		if v >= thresholdAbs {
			return true
		}
	}
	return false
}

const agcClipThresholdAbs = 32000
const agcEpsilon = 1e-6

// Process runs one hop through the AGC algorithm (spec §4.3 steps 1-5) and
// returns the gain to apply to the hop. noiseFloorEstimate is the current
// average noise-floor estimate used to derive the idle-silence threshold
// (internally fixed at half the floor).
func (a *AGC) Process(hop *Hop, t *TuningPipeline, noiseFloorEstimate float32) float32 {
	rmsIn := rmsOf(hop)

	desired := t.AGCTargetRMS / maxf32(rmsIn, agcEpsilon)
	desired = clampf32(desired, t.AGCMinGain, t.AGCMaxGain)

	if desired > a.gain {
		a.gain = lerp(a.gain, desired, t.AGCAttack)
	} else {
		a.gain = lerp(a.gain, desired, t.AGCRelease)
	}

	if isClipping(hop, agcClipThresholdAbs) {
		a.gain *= t.AGCClipReduce
	}

	idleThreshold := noiseFloorEstimate * 0.5
	if rmsIn < idleThreshold {
		a.gain = lerp(a.gain, 1.0, t.AGCIdleReturnRate)
	}

	a.gain = clampf32(a.gain, t.AGCMinGain, t.AGCMaxGain)
	return a.gain
}

// ApplyGain scales a hop's samples by g in place, saturating at int16
// bounds.
func ApplyGain(hop *Hop, g float32) {
	for i, s := range hop {
		hop[i] = clampInt16(float32(s) * g)
	}
}
