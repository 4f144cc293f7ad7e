package audiocore

// beatPLL tracks a free-running beat phase in [0,1), advancing each hop
// at the rate implied by the current BPM estimate and correcting toward
// zero on each detected onset (spec §4.8c). A parallel bar phase applies
// a slower correction gain on downbeat candidates.
type beatPLL struct {
	beatPhase float32
	barPhase  float32
	barBeats  int
}

func newBeatPLL() *beatPLL {
	p := &beatPLL{}
	p.reset()
	return p
}

func (p *beatPLL) reset() {
	p.beatPhase = 0
	p.barPhase = 0
	p.barBeats = 0
}

// wrapPhaseError maps a raw phase difference into [-0.5, 0.5).
func wrapPhaseError(e float32) float32 {
	for e >= 0.5 {
		e -= 1.0
	}
	for e < -0.5 {
		e += 1.0
	}
	return e
}

// advance moves the beat/bar phase forward by one hop at bpm, returning
// whether the beat phase crossed zero this hop (a beat_tick candidate).
func (p *beatPLL) advance(sampleRateHz uint32, bpm float32, beatsPerBar uint8) (crossedZero bool) {
	if bpm <= 0 {
		return false
	}
	samplesPerBeat := 60.0 * float32(sampleRateHz) / bpm
	deltaPhase := float32(HopSize) / samplesPerBeat

	prev := p.beatPhase
	p.beatPhase += deltaPhase
	if p.beatPhase >= 1.0 {
		p.beatPhase -= 1.0
		p.barBeats++
		if beatsPerBar > 0 && p.barBeats >= int(beatsPerBar) {
			p.barBeats = 0
		}
		p.barPhase = float32(p.barBeats) / float32(maxu8(beatsPerBar, 1))
		crossedZero = true
	}
	_ = prev
	return crossedZero
}

// correct applies a phase-error correction at the moment an onset lands,
// pulling the beat phase (and, on downbeat candidates, the bar phase)
// toward alignment.
func (p *beatPLL) correct(onsetPhase float32, phaseCorrectionGain, barCorrectionGain float32, isDownbeatCandidate bool) {
	e := wrapPhaseError(onsetPhase)
	p.beatPhase -= phaseCorrectionGain * e
	for p.beatPhase < 0 {
		p.beatPhase += 1.0
	}
	for p.beatPhase >= 1.0 {
		p.beatPhase -= 1.0
	}

	if isDownbeatCandidate {
		barE := wrapPhaseError(p.barPhase)
		p.barPhase -= barCorrectionGain * barE
		for p.barPhase < 0 {
			p.barPhase += 1.0
		}
		for p.barPhase >= 1.0 {
			p.barPhase -= 1.0
		}
	}
}

func maxu8(v uint8, floor uint8) uint8 {
	if v < floor {
		return floor
	}
	return v
}
