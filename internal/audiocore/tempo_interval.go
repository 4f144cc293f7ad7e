package audiocore

// iojRingSize is the number of inter-onset intervals retained for BPM
// candidate scoring (spec §4.8b, N ≈ 16).
const iojRingSize = 16

// intervalTolerance is the ±5% matching window used when scoring a
// candidate BPM against an observed inter-onset interval or one of its
// integer multiples/divisors.
const intervalTolerance = 0.05

// harmonicAliasMargin is the "within 2%" tie-break window from spec
// §4.8b's anti-alias policy.
const harmonicAliasMargin = 0.02

// maxHarmonicRatio bounds how many integer multiples/divisors of a
// candidate period are checked against an observed IOI.
const maxHarmonicRatio = 4

// intervalEstimator keeps a ring of recent inter-onset intervals (in
// samples) and scores BPM candidates against it, picking a winner and a
// consistency fraction (spec §4.8b).
type intervalEstimator struct {
	iois     [iojRingSize]float64
	count    int
	writeIdx int

	lastOnsetSample uint64
	haveLastOnset   bool

	bpmEMA      float32
	bpmEMAValid bool
}

func newIntervalEstimator() *intervalEstimator {
	ie := &intervalEstimator{}
	ie.reset()
	return ie
}

func (ie *intervalEstimator) reset() {
	ie.iois = [iojRingSize]float64{}
	ie.count = 0
	ie.writeIdx = 0
	ie.haveLastOnset = false
	ie.bpmEMAValid = false
}

// onOnset records a new onset at the given sample index, deriving an
// inter-onset interval against the previous onset when one exists.
func (ie *intervalEstimator) onOnset(sampleIndex uint64) {
	if ie.haveLastOnset && sampleIndex > ie.lastOnsetSample {
		ioi := float64(sampleIndex - ie.lastOnsetSample)
		ie.iois[ie.writeIdx] = ioi
		ie.writeIdx = (ie.writeIdx + 1) % iojRingSize
		if ie.count < iojRingSize {
			ie.count++
		}
	}
	ie.lastOnsetSample = sampleIndex
	ie.haveLastOnset = true
}

// periodScore returns how well period (in samples) matches a single
// observed IOI, checking the fundamental plus integer multiples and
// divisors up to maxHarmonicRatio within intervalTolerance.
func periodScore(periodSamples, ioi float64) float64 {
	best := 0.0
	for ratio := 1; ratio <= maxHarmonicRatio; ratio++ {
		candidates := []float64{periodSamples * float64(ratio), periodSamples / float64(ratio)}
		for _, c := range candidates {
			if c <= 0 {
				continue
			}
			rel := (ioi - c) / c
			if rel < 0 {
				rel = -rel
			}
			if rel <= intervalTolerance {
				// Closer matches and lower harmonic ratios score higher.
				score := (1.0 - rel/intervalTolerance) / float64(ratio)
				if score > best {
					best = score
				}
			}
		}
	}
	return best
}

// estimate scores every candidate BPM in [bpmMin, bpmMax] (1 BPM steps)
// against the current IOI ring and returns the winning BPM, its
// consistency fraction in [0,1], and whether enough IOIs exist to
// attempt an estimate at all.
func (ie *intervalEstimator) estimate(sampleRateHz uint32, bpmMin, bpmMax float32) (bpm float32, consistency float32, ok bool) {
	if ie.count < 2 {
		return 0, 0, false
	}

	lo := int(bpmMin)
	hi := int(bpmMax)
	if hi < lo {
		lo, hi = hi, lo
	}

	bestBPM := float32(0)
	bestScore := -1.0
	secondBestBPM := float32(0)
	secondBestScore := -1.0

	for candidate := lo; candidate <= hi; candidate++ {
		periodSamples := 60.0 * float64(sampleRateHz) / float64(candidate)
		var total float64
		for i := 0; i < ie.count; i++ {
			total += periodScore(periodSamples, ie.iois[i])
		}
		if total > bestScore {
			secondBestScore, secondBestBPM = bestScore, bestBPM
			bestScore, bestBPM = total, float32(candidate)
		} else if total > secondBestScore {
			secondBestScore, secondBestBPM = total, float32(candidate)
		}
	}

	winner := bestBPM
	// Anti-alias: if the runner-up scores within 2% of the winner, prefer
	// whichever is closer to the EMA-smoothed previous BPM, to avoid
	// oscillating between harmonically related tempi (e.g. 155<->77<->81).
	if ie.bpmEMAValid && bestScore > 0 && secondBestScore >= 0 {
		rel := (bestScore - secondBestScore) / bestScore
		if rel <= harmonicAliasMargin {
			if absf32(secondBestBPM-ie.bpmEMA) < absf32(bestBPM-ie.bpmEMA) {
				winner = secondBestBPM
			}
		}
	}

	if !ie.bpmEMAValid {
		ie.bpmEMA = winner
		ie.bpmEMAValid = true
	}

	// Consistency: fraction of the IOI ring consistent with the winner's
	// period within tolerance.
	periodSamples := 60.0 * float64(sampleRateHz) / float64(winner)
	consistentCount := 0
	for i := 0; i < ie.count; i++ {
		if periodScore(periodSamples, ie.iois[i]) > 0 {
			consistentCount++
		}
	}
	consistency = float32(consistentCount) / float32(ie.count)

	return winner, consistency, true
}

// updateBPMEMA smooths the accepted BPM estimate with time constant tau
// (seconds), called once per hop after a new estimate has been accepted.
func (ie *intervalEstimator) updateBPMEMA(bpm float32, tau float32) {
	alpha := clampf32(float32(HopSize)/float32(SampleRateHz)/maxf32(tau, 1e-3), 0, 1)
	if !ie.bpmEMAValid {
		ie.bpmEMA = bpm
		ie.bpmEMAValid = true
		return
	}
	ie.bpmEMA = lerp(ie.bpmEMA, bpm, alpha)
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
