package audiocore

// lookaheadFrames is the 3-frame ring used for spike detection (spec
// §4.9 step 2), grounded on original_source's LOOKAHEAD_FRAMES.
const lookaheadFrames = 3

// lookaheadBuffer holds the last 3 frames of up to n values and, once
// full, can identify and correct a single-frame "spike" (the middle
// frame moving opposite both neighbors). Once full, output lags the input
// by 1 frame (~16ms at hop cadence): the emitted frame is the middle one.
type lookaheadBuffer struct {
	history      [lookaheadFrames][]float32
	currentFrame int
	framesFilled int
	enabled      bool
}

func newLookaheadBuffer(n int) *lookaheadBuffer {
	lb := &lookaheadBuffer{enabled: true}
	for i := range lb.history {
		lb.history[i] = make([]float32, n)
	}
	return lb
}

func (lb *lookaheadBuffer) reset() {
	for i := range lb.history {
		for j := range lb.history[i] {
			lb.history[i][j] = 0
		}
	}
	lb.currentFrame = 0
	lb.framesFilled = 0
}

// push writes the newest frame into the ring.
func (lb *lookaheadBuffer) push(in []float32) {
	copy(lb.history[lb.currentFrame], in)
	lb.currentFrame = (lb.currentFrame + 1) % lookaheadFrames
	if lb.framesFilled < lookaheadFrames {
		lb.framesFilled++
	}
}

// despike writes the despiked middle-of-ring frame into out, and
// reports how many bands were detected as spikes (direction change) and
// how many were actually corrected (spike magnitude above
// spikeThreshold). Until the ring has 3 frames of history it passes the
// oldest available frame through unchanged.
func (lb *lookaheadBuffer) despike(out []float32, spikeThreshold float32, stats *SpikeDetectionStats, isBands bool) {
	if !lb.enabled || lb.framesFilled < lookaheadFrames {
		oldest := (lb.currentFrame - lb.framesFilled + lookaheadFrames) % lookaheadFrames
		copy(out, lb.history[oldest])
		return
	}

	// With a full 3-frame ring, the "middle" frame (oldest+1) is the one
	// about to be read, with one frame of lookbehind and one of lookahead.
	oldest := lb.currentFrame // about to be overwritten next push == oldest
	prevIdx := oldest
	midIdx := (oldest + 1) % lookaheadFrames
	nextIdx := (oldest + 2) % lookaheadFrames

	prev := lb.history[prevIdx]
	mid := lb.history[midIdx]
	next := lb.history[nextIdx]

	var detected, corrected uint32
	var removed float32

	for i := range mid {
		isSpike := (mid[i] > prev[i] && mid[i] > next[i]) || (mid[i] < prev[i] && mid[i] < next[i])
		if isSpike {
			detected++
			neighborAvg := (prev[i] + next[i]) / 2
			delta := mid[i] - neighborAvg
			if delta < 0 {
				delta = -delta
			}
			if delta > spikeThreshold {
				removed += delta
				corrected++
				out[i] = neighborAvg
				continue
			}
		}
		out[i] = mid[i]
	}

	if stats != nil {
		stats.TotalFrames++
		if isBands {
			stats.SpikesDetectedBands += detected
		} else {
			stats.SpikesDetectedChroma += detected
		}
		stats.SpikesCorrected += corrected
		stats.TotalEnergyRemoved += removed
	}
}
