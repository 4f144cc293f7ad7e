package audiocore

// silenceGate implements spec §4.9 step 8: once RMS stays below
// threshold for hysteresis_ms, silent_scale fades from 1 to 0 over
// roughly 1 second; any activity above threshold resets instantly.
type silenceGate struct {
	belowSinceSample uint64
	haveBelowSince   bool
	scale            float32
	isSilent         bool
}

// silenceFadeSamples is the "~1s" fade duration in samples at the
// canonical sample rate.
const silenceFadeSamples = float32(SampleRateHz)

func newSilenceGate() *silenceGate {
	g := &silenceGate{}
	g.reset()
	return g
}

func (g *silenceGate) reset() {
	g.haveBelowSince = false
	g.scale = 1.0
	g.isSilent = false
}

// update advances the gate by one hop given the current sample index
// and smoothed RMS, returning the current silent_scale and is_silent.
func (g *silenceGate) update(sampleIndex uint64, rms float32, threshold float32, hysteresisMs float32) (scale float32, isSilent bool) {
	if rms >= threshold {
		g.haveBelowSince = false
		g.scale = 1.0
		g.isSilent = false
		return g.scale, g.isSilent
	}

	if !g.haveBelowSince {
		g.belowSinceSample = sampleIndex
		g.haveBelowSince = true
	}

	belowSamples := sampleIndex - g.belowSinceSample
	hysteresisSamples := uint64(hysteresisMs * float32(SampleRateHz) / 1000.0)

	if belowSamples < hysteresisSamples {
		g.scale = 1.0
		g.isSilent = false
		return g.scale, g.isSilent
	}

	fadeSamples := belowSamples - hysteresisSamples
	fadeFrac := float32(fadeSamples) / silenceFadeSamples
	g.scale = clamp01(1.0 - fadeFrac)
	g.isSilent = g.scale <= 0
	return g.scale, g.isSilent
}
