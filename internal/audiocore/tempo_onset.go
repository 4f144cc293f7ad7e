package audiocore

// onsetDetector implements layer (a) of the tempo tracker: onset events
// from combined spectral-flux novelty and VU derivative against an
// adaptive threshold, with a refractory period to forbid double-triggers
// (spec §4.8a).
type onsetDetector struct {
	baseline     float32
	prevRMS      float32
	samplesSince uint64
	refractory   uint64
	minStrength  float32
	initialized  bool
}

// onsetThresholdAlpha is the adaptive-threshold tracking rate (lerp
// weight toward the current flux value each hop).
const onsetThresholdAlpha = 0.02

// onsetThresholdMargin multiplies the tracked threshold, requiring flux
// to exceed it by a margin before an onset fires.
const onsetThresholdMargin = 1.5

// defaultMinOnsetStrength is the floor below which flux never counts as
// an onset regardless of the adaptive threshold, preventing onsets from
// firing on pure noise floor jitter.
const defaultMinOnsetStrength = 0.05

// defaultRefractorySamples corresponds to ~200ms at 16kHz, forbidding a
// second onset immediately after the first.
const defaultRefractorySamples = uint64(SampleRateHz / 5)

func newOnsetDetector() *onsetDetector {
	o := &onsetDetector{
		minStrength: defaultMinOnsetStrength,
		refractory:  defaultRefractorySamples,
	}
	o.reset()
	return o
}

func (o *onsetDetector) reset() {
	o.baseline = defaultMinOnsetStrength
	o.prevRMS = 0
	o.samplesSince = o.refractory
	o.initialized = false
}

// update advances the detector by one hop and reports whether an onset
// fired this hop, along with the flux value that triggered it (for phase
// and strength bookkeeping downstream). The adaptive baseline tracks the
// combined signal smoothly; the comparison threshold is the baseline
// scaled by onsetThresholdMargin each hop, not fed back into the
// baseline itself (a literal feed-back of the scaled value would make
// the threshold diverge over time).
func (o *onsetDetector) update(flux, rmsIn float32) (fired bool, strength float32) {
	o.samplesSince += HopSize

	vuDerivative := maxf32(0, rmsIn-o.prevRMS)
	o.prevRMS = rmsIn

	combined := flux + vuDerivative

	if !o.initialized {
		o.baseline = combined
		o.initialized = true
	} else {
		o.baseline = lerp(o.baseline, combined, onsetThresholdAlpha)
	}
	threshold := o.baseline * onsetThresholdMargin

	if combined > threshold && combined > o.minStrength && o.samplesSince > o.refractory {
		o.samplesSince = 0
		return true, combined
	}
	return false, combined
}
