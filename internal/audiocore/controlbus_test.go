package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRawInput() ControlBusRawInput {
	var raw ControlBusRawInput
	raw.RMS = 0.3
	raw.Flux = 0.2
	for i := range raw.Bands {
		raw.Bands[i] = 0.1 * float32(i+1)
	}
	raw.Chroma[0] = 0.8
	raw.Chroma[4] = 0.6
	raw.Chroma[7] = 0.5
	raw.TempoConfidence = 0.5
	return raw
}

func TestControlBus_HopSeqMonotonicallyIncrements(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	raw := newTestRawInput()

	var last uint32
	now := AudioTime{SampleRateHz: SampleRateHz}
	for i := 0; i < 10; i++ {
		frame := cb.UpdateFromHop(now, &raw, &tuning)
		assert.Greater(t, frame.HopSeq, last)
		last = frame.HopSeq
		now = now.Advance()
	}
}

func TestControlBus_PublishedScalarsAreUnitBounded(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	raw := newTestRawInput()
	raw.RMS = 5.0 // deliberately out-of-range input
	raw.Flux = -5.0
	for i := range raw.Bands {
		raw.Bands[i] = 10.0
	}

	now := AudioTime{SampleRateHz: SampleRateHz}
	var frame ControlBusFrame
	for i := 0; i < 5; i++ {
		frame = cb.UpdateFromHop(now, &raw, &tuning)
		now = now.Advance()
	}

	assert.GreaterOrEqual(t, frame.RMS, float32(0))
	assert.LessOrEqual(t, frame.RMS, float32(1))
	assert.GreaterOrEqual(t, frame.Flux, float32(0))
	assert.LessOrEqual(t, frame.Flux, float32(1))
	for _, v := range frame.Bands {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	for _, v := range frame.Chroma {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
	assert.GreaterOrEqual(t, frame.StyleConfidence, float32(0))
	assert.LessOrEqual(t, frame.StyleConfidence, float32(1))
}

func TestControlBus_DespikeCorrectsInjectedSpike(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	now := AudioTime{SampleRateHz: SampleRateHz}

	steady := newTestRawInput()
	steady.Bands[0] = 0.2

	// Settle on a steady value.
	for i := 0; i < 5; i++ {
		cb.UpdateFromHop(now, &steady, &tuning)
		now = now.Advance()
	}

	spiked := steady
	spiked.Bands[0] = 0.95 // one-frame spike far above its neighbors

	cb.UpdateFromHop(now, &spiked, &tuning)
	now = now.Advance()
	cb.UpdateFromHop(now, &steady, &tuning)
	now = now.Advance()
	frame := cb.UpdateFromHop(now, &steady, &tuning)
	now = now.Advance()

	stats := cb.SpikeStats()
	assert.Greater(t, stats.SpikesDetectedBands, uint32(0))
	assert.Greater(t, stats.SpikesCorrected, uint32(0))
	// The despiked, smoothed band should never have jumped anywhere near
	// the raw spike value.
	assert.Less(t, frame.Bands[0], float32(0.95))
}

func TestControlBus_ChordDetectionMatchesKnownTriad(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	now := AudioTime{SampleRateHz: SampleRateHz}

	var raw ControlBusRawInput
	raw.RMS = 0.3
	// C major triad: root C(0), major third E(4 semitones up), fifth G(7).
	raw.Chroma[0] = 1.0
	raw.Chroma[4] = 0.9
	raw.Chroma[7] = 0.9

	var frame ControlBusFrame
	for i := 0; i < 50; i++ {
		frame = cb.UpdateFromHop(now, &raw, &tuning)
		now = now.Advance()
	}

	assert.Equal(t, uint8(0), frame.ChordState.RootNote)
	assert.Equal(t, ChordMajor, frame.ChordState.Type)
}

func TestControlBus_SilenceGateFadesOutAfterHysteresis(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	tuning.SilenceHysteresisMs = 0
	now := AudioTime{SampleRateHz: SampleRateHz}

	loud := newTestRawInput()
	loud.RMS = 0.5
	var frame ControlBusFrame
	for i := 0; i < 5; i++ {
		frame = cb.UpdateFromHop(now, &loud, &tuning)
		now = now.Advance()
	}
	assert.False(t, frame.IsSilent)

	quiet := newTestRawInput()
	quiet.RMS = 0.0
	for i := 0; i < int(SampleRateHz/HopSize)*2; i++ {
		frame = cb.UpdateFromHop(now, &quiet, &tuning)
		now = now.Advance()
	}
	assert.True(t, frame.IsSilent)
	assert.Equal(t, float32(0), frame.SilentScale)
}

func TestControlBus_StyleClassificationProducesValidEnum(t *testing.T) {
	cb := NewControlBus()
	tuning := DefaultTuning()
	now := AudioTime{SampleRateHz: SampleRateHz}
	raw := newTestRawInput()

	var frame ControlBusFrame
	for i := 0; i < 20; i++ {
		frame = cb.UpdateFromHop(now, &raw, &tuning)
		now = now.Advance()
	}

	assert.LessOrEqual(t, frame.CurrentStyle, StylePercussive)
}

func TestZoneAGCBank_ReactsToLiveTuningWrite(t *testing.T) {
	bank := newZoneAGCBank(NumBands)
	tuning := DefaultTuning()

	loud := [NumBands]float32{0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9}
	quiet := [NumBands]float32{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}

	// Drive the max-follower up on a loud hop, then switch to a quiet hop
	// twice under two different release rates read from the same bank —
	// a cached-at-construction rate would behave identically both times.
	values := loud
	bank.process(values[:], &tuning)

	tuning.ZoneRelease = 0.01
	slowValues := quiet
	bank.process(slowValues[:], &tuning)

	tuning.ZoneRelease = 0.9
	fastValues := quiet
	bank.process(fastValues[:], &tuning)

	assert.NotEqual(t, slowValues, fastValues, "zone AGC must read release rate fresh each call, not cache it at construction")
}
