package audiocore

// lerp linearly interpolates from a to b by t, where t need not be
// clamped to [0,1] by the caller (every call site in this package passes
// either a rate already clamped via Tuning or a constant/computed rate in
// [0,1]).
func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampf32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// smoothAttackRelease advances a smoothed value toward target using
// attack when rising and release when falling, the asymmetric pattern
// used throughout ControlBus (spec §4.9 step 4).
func smoothAttackRelease(current, target, attack, release float32) float32 {
	if target > current {
		return lerp(current, target, attack)
	}
	return lerp(current, target, release)
}

// downsampleWaveform averages adjacent sample pairs of a HopSize hop
// into a Waveform128Len-sized int16 buffer for display.
func downsampleWaveform(hop *Hop, out *[Waveform128Len]int16) {
	ratio := HopSize / Waveform128Len
	for i := 0; i < Waveform128Len; i++ {
		var sum int32
		for j := 0; j < ratio; j++ {
			sum += int32(hop[i*ratio+j])
		}
		out[i] = int16(sum / int32(ratio))
	}
}
