package audiocore

import "math"

// SyntheticSource is a scriptable AudioSource used by tests and by
// cmd/gentone: it synthesizes hops from a sequence of Segment generators
// instead of reading real hardware. It never fails Init and never returns
// capture errors unless explicitly scripted to via InjectReadError.
type SyntheticSource struct {
	segments    []Segment
	segIdx      int
	sampleInSeg uint64
	stats       captureStatsAccum
	gainDB      int8
	forceErrors int // remaining CaptureReadError results to return
}

// Segment describes a stretch of synthesized audio.
type Segment struct {
	// Samples is the total sample count this segment should emit before
	// advancing to the next one. 0 means "forever" (only valid as the
	// last segment).
	Samples uint64
	// Gen produces the sample value for sample index n (0-based within
	// this segment).
	Gen func(n uint64) int16
}

// NewSyntheticSource builds a source that plays the given segments in
// order, holding on the last segment's generator once all prior segments
// are exhausted.
func NewSyntheticSource(segments ...Segment) *SyntheticSource {
	return &SyntheticSource{segments: segments}
}

// SilenceSegment returns a Segment of n zero samples.
func SilenceSegment(n uint64) Segment {
	return Segment{Samples: n, Gen: func(uint64) int16 { return 0 }}
}

// SineSegment returns a Segment of n samples of a sine wave of the given
// peak amplitude at freqHz sampled at SampleRateHz.
func SineSegment(n uint64, freqHz float64, amplitude int16) Segment {
	return Segment{Samples: n, Gen: func(i uint64) int16 {
		phase := 2 * math.Pi * freqHz * float64(i) / SampleRateHz
		return int16(float64(amplitude) * math.Sin(phase))
	}}
}

// ClickTrainSegment returns a Segment emitting short white-noise-like
// clicks of clickSamples length every periodSamples, used to drive the
// tempo tracker's onset detector in tests. rng is a simple xorshift seeded
// deterministically so tests are reproducible.
func ClickTrainSegment(n uint64, periodSamples, clickSamples uint64, amplitude int16) Segment {
	state := uint32(0x9E3779B9)
	next := func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
	return Segment{Samples: n, Gen: func(i uint64) int16 {
		if i%periodSamples >= clickSamples {
			return 0
		}
		r := next()
		return int16((int32(r%uint32(2*int32(amplitude))) - int32(amplitude)))
	}}
}

// Init implements AudioSource.
func (s *SyntheticSource) Init() error { return nil }

// CaptureHop implements AudioSource.
func (s *SyntheticSource) CaptureHop(out *Hop) CaptureResult {
	if s.forceErrors > 0 {
		s.forceErrors--
		s.stats.readErrors.Add(1)
		return CaptureReadError
	}
	if len(s.segments) == 0 {
		for i := range out {
			out[i] = 0
		}
		s.stats.recordHop(0, 0)
		return CaptureOK
	}
	for i := 0; i < HopSize; i++ {
		seg := s.segments[s.segIdx]
		out[i] = seg.Gen(s.sampleInSeg)
		s.sampleInSeg++
		if seg.Samples != 0 && s.sampleInSeg >= seg.Samples {
			if s.segIdx < len(s.segments)-1 {
				s.segIdx++
				s.sampleInSeg = 0
			}
		}
	}
	s.stats.recordHop(0, peakAbs(out))
	return CaptureOK
}

// InjectReadError schedules the next n CaptureHop calls to return
// CaptureReadError, for exercising AudioTask's re-init/degrade policy.
func (s *SyntheticSource) InjectReadError(n int) { s.forceErrors = n }

// SetMicGainDB implements AudioSource.
func (s *SyntheticSource) SetMicGainDB(db int8) bool {
	if !isValidMicGain(db) {
		return false
	}
	s.gainDB = db
	return true
}

// Stats implements AudioSource.
func (s *SyntheticSource) Stats() CaptureStats { return s.stats.snapshot() }

// Close implements AudioSource.
func (s *SyntheticSource) Close() error { return nil }
