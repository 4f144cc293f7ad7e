package audiocore

// TempoState is the tempo tracker's lock state machine (spec §4.8).
type TempoState uint8

const (
	TempoSearching TempoState = iota
	TempoTracking
	TempoLocked
)

func (s TempoState) String() string {
	switch s {
	case TempoSearching:
		return "Searching"
	case TempoTracking:
		return "Tracking"
	case TempoLocked:
		return "Locked"
	default:
		return "Unknown"
	}
}

// TempoOutput is the tempo tracker's published result (spec §4.8's
// "Output (TempoOutput)").
type TempoOutput struct {
	BPM          float32
	Phase01      float32
	Confidence   float32
	Locked       bool
	BeatStrength float32
	BeatTick     bool
}

// beatStrengthDecayPerHop sets how quickly beat_strength decays between
// beats (spec: "decays exponentially between beats").
const beatStrengthDecayPerHop = 0.85

// consistencyTrackingThreshold / consistencyLockedThreshold /
// consistencyLostThreshold implement the Searching/Tracking/Locked
// transition thresholds from spec §4.8.
const (
	consistencyTrackingThreshold = 0.5
	consistencyLockedThreshold   = 0.7
	consistencyLostThreshold     = 0.3
)

const trackingConsecutiveOnsets = 4
const lockedSustainSamples = uint64(2 * SampleRateHz)
const lockedPhaseErrorVarianceMax = 0.04
const searchingTimeoutSamples = uint64(3 * SampleRateHz)
const lostConsistencyHoldSamples = uint64(SampleRateHz)

// phaseErrorRingSize is "the last 8 onsets" used for the Locked phase
// variance check.
const phaseErrorRingSize = 8

// TempoTracker implements the three-layer onset -> interval -> PLL
// tracker described in spec §4.8, grounded on original_source's
// tempo/TempoTracker.{h,cpp} architecture (onset detection -> beat
// tracking -> output formatting) and AudioContractTuning defaults.
type TempoTracker struct {
	sampleRateHz uint32

	onset    *onsetDetector
	interval *intervalEstimator
	pll      *beatPLL

	state TempoState

	sampleIndex uint64

	consecutiveGoodOnsets int
	goodSinceSample       uint64
	haveGoodSince         bool

	lostSinceSample uint64
	haveLostSince   bool

	lastOnsetSample uint64
	haveLastOnset   bool

	phaseErrors    [phaseErrorRingSize]float32
	phaseErrCount  int
	phaseErrIdx    int

	confidenceSmoothed float32
	beatStrength       float32

	lastBPM        float32
	lastConsistency float32
}

// NewTempoTracker builds a tracker for the given capture sample rate.
func NewTempoTracker(sampleRateHz uint32) *TempoTracker {
	t := &TempoTracker{
		sampleRateHz: sampleRateHz,
		onset:        newOnsetDetector(),
		interval:     newIntervalEstimator(),
		pll:          newBeatPLL(),
	}
	t.Reset()
	return t
}

// Reset returns the tracker to its initial Searching state.
func (t *TempoTracker) Reset() {
	t.onset.reset()
	t.interval.reset()
	t.pll.reset()
	t.state = TempoSearching
	t.sampleIndex = 0
	t.consecutiveGoodOnsets = 0
	t.haveGoodSince = false
	t.haveLostSince = false
	t.haveLastOnset = false
	t.phaseErrCount = 0
	t.phaseErrIdx = 0
	t.confidenceSmoothed = 0
	t.beatStrength = 0
	t.lastBPM = 0
	t.lastConsistency = 0
}

// Update advances the tracker by one hop given this hop's novelty flux
// and RMS, and the current beat/time contract parameters, returning the
// published TempoOutput for this hop.
func (t *TempoTracker) Update(flux, rmsIn float32, contract *TuningContract) TempoOutput {
	t.sampleIndex += HopSize

	fired, strength := t.onset.update(flux, rmsIn)

	bpm := t.lastBPM
	consistency := t.lastConsistency

	if fired {
		t.interval.onOnset(t.sampleIndex)
		if est, cons, ok := t.interval.estimate(t.sampleRateHz, contract.BPMMin, contract.BPMMax); ok {
			bpm = est
			consistency = cons
			t.interval.updateBPMEMA(bpm, contract.BPMTau)
		}
		t.lastBPM = bpm
		t.lastConsistency = consistency

		t.beatStrength = clamp01(strength)

		if t.haveLastOnset {
			t.lostSinceSample = 0
			t.haveLostSince = false
		}
		t.lastOnsetSample = t.sampleIndex
		t.haveLastOnset = true

		t.recordStateTransitionOnOnset(consistency)
	} else {
		t.beatStrength *= beatStrengthDecayPerHop
	}

	if bpm <= 0 {
		bpm = (contract.BPMMin + contract.BPMMax) / 2
	}

	beatTick := t.pll.advance(t.sampleRateHz, bpm, contract.BeatsPerBar)

	if fired {
		onsetPhase := t.pll.beatPhase
		isDownbeat := t.pll.barBeats == 0
		t.pll.correct(onsetPhase, contract.PhaseCorrectionGain, contract.BarCorrectionGain, isDownbeat)

		e := wrapPhaseError(onsetPhase)
		t.phaseErrors[t.phaseErrIdx] = e
		t.phaseErrIdx = (t.phaseErrIdx + 1) % phaseErrorRingSize
		if t.phaseErrCount < phaseErrorRingSize {
			t.phaseErrCount++
		}
	}

	t.checkSearchingTimeout()
	t.checkConsistencyLoss(consistency)

	alpha := clampf32(float32(HopSize)/float32(SampleRateHz)/maxf32(contract.ConfidenceTau, 1e-3), 0, 1)
	t.confidenceSmoothed = lerp(t.confidenceSmoothed, clamp01(consistency), alpha)

	locked := t.state == TempoLocked
	if beatTick && !locked {
		beatTick = false
	}

	return TempoOutput{
		BPM:          clampf32(bpm, contract.BPMMin, contract.BPMMax),
		Phase01:      t.pll.beatPhase,
		Confidence:   clamp01(t.confidenceSmoothed),
		Locked:       locked,
		BeatStrength: clamp01(t.beatStrength),
		BeatTick:     beatTick,
	}
}

func (t *TempoTracker) recordStateTransitionOnOnset(consistency float32) {
	if consistency >= consistencyTrackingThreshold {
		t.consecutiveGoodOnsets++
	} else {
		t.consecutiveGoodOnsets = 0
	}

	switch t.state {
	case TempoSearching:
		if t.consecutiveGoodOnsets >= trackingConsecutiveOnsets {
			t.state = TempoTracking
			t.haveGoodSince = false
		}
	case TempoTracking:
		if consistency >= consistencyLockedThreshold {
			if !t.haveGoodSince {
				t.goodSinceSample = t.sampleIndex
				t.haveGoodSince = true
			}
			if t.sampleIndex-t.goodSinceSample >= lockedSustainSamples && t.phaseErrorVarianceOK() {
				t.state = TempoLocked
			}
		} else {
			t.haveGoodSince = false
		}
	case TempoLocked:
		// Stays Locked unless checkConsistencyLoss/checkSearchingTimeout
		// demote it.
	}
}

func (t *TempoTracker) phaseErrorVarianceOK() bool {
	if t.phaseErrCount < phaseErrorRingSize {
		return false
	}
	var mean float32
	for i := 0; i < t.phaseErrCount; i++ {
		mean += t.phaseErrors[i]
	}
	mean /= float32(t.phaseErrCount)
	var variance float32
	for i := 0; i < t.phaseErrCount; i++ {
		d := t.phaseErrors[i] - mean
		variance += d * d
	}
	variance /= float32(t.phaseErrCount)
	return variance < lockedPhaseErrorVarianceMax
}

func (t *TempoTracker) checkSearchingTimeout() {
	if !t.haveLastOnset {
		return
	}
	if t.sampleIndex-t.lastOnsetSample > searchingTimeoutSamples {
		t.state = TempoSearching
		t.consecutiveGoodOnsets = 0
		t.haveGoodSince = false
	}
}

func (t *TempoTracker) checkConsistencyLoss(consistency float32) {
	if consistency < consistencyLostThreshold {
		if !t.haveLostSince {
			t.lostSinceSample = t.sampleIndex
			t.haveLostSince = true
		}
		if t.sampleIndex-t.lostSinceSample >= lostConsistencyHoldSamples {
			t.state = TempoSearching
			t.consecutiveGoodOnsets = 0
			t.haveGoodSince = false
		}
	} else {
		t.haveLostSince = false
	}
}

// State returns the tracker's current lock state, for diagnostics.
func (t *TempoTracker) State() TempoState { return t.state }
