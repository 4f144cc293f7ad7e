package audiocore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingSource wraps an AudioSource and invokes cancel once it has
// served hopLimit hops, giving tests a deterministic way to stop
// AudioCore.Run against an otherwise-infinite SyntheticSource.
type countingSource struct {
	*SyntheticSource
	hops     int
	hopLimit int
	cancel   context.CancelFunc
}

func (c *countingSource) CaptureHop(out *Hop) CaptureResult {
	res := c.SyntheticSource.CaptureHop(out)
	c.hops++
	if c.hops >= c.hopLimit {
		c.cancel()
	}
	return res
}

func runForHops(core *AudioCore, source *countingSource, ctx context.Context) {
	_ = core.Run(ctx)
}

func TestAudioCore_SilenceThenSineBurstPublishesFrames(t *testing.T) {
	silenceHops := uint64(50 * HopSize)
	sineHops := uint64(100 * HopSize)
	src := NewSyntheticSource(
		SilenceSegment(silenceHops),
		SineSegment(sineHops, 250, 20000),
	)
	ctx, cancel := context.WithCancel(context.Background())
	counting := &countingSource{SyntheticSource: src, hopLimit: 140, cancel: cancel}

	core := NewAudioCore(counting, PresetDefault, -1)
	runForHops(core, counting, ctx)

	assert.Greater(t, core.Frames().Available(), uint32(0))
	frame := core.Frames().Read()
	assert.GreaterOrEqual(t, frame.HopSeq, uint32(1))
}

func TestAudioCore_ClickTrainLocksOrGainsTempoConfidence(t *testing.T) {
	periodSamples := uint64(60 * SampleRateHz / 120)
	src := NewSyntheticSource(ClickTrainSegment(0, periodSamples, periodSamples/10, 24000))
	ctx, cancel := context.WithCancel(context.Background())
	hopLimit := int(10 * SampleRateHz / HopSize)
	counting := &countingSource{SyntheticSource: src, hopLimit: hopLimit, cancel: cancel}

	core := NewAudioCore(counting, PresetDefault, -1)
	runForHops(core, counting, ctx)

	stats := core.Stats()
	assert.True(t, stats.Tempo.Locked || stats.Tempo.Confidence > 0)
}

func TestAudioCore_ClippingFreezesNoiseFloor(t *testing.T) {
	src := NewSyntheticSource(SineSegment(0, 440, 32500)) // clips agcClipThresholdAbs
	ctx, cancel := context.WithCancel(context.Background())
	hopLimit := int(2 * SampleRateHz / HopSize)
	counting := &countingSource{SyntheticSource: src, hopLimit: hopLimit, cancel: cancel}

	core := NewAudioCore(counting, PresetDefault, -1)
	runForHops(core, counting, ctx)

	stats := core.Stats()
	// Every hop clips (minimum AGC gain is 1.0), so the noise floor is
	// frozen and never moves off its initial value.
	for _, v := range stats.NoiseFloor {
		assert.Equal(t, float32(InitialNoiseFloor), v)
	}
}

func TestAudioCore_ReinitsAfterThreeConsecutiveReadErrors(t *testing.T) {
	src := NewSyntheticSource(SilenceSegment(0))
	src.InjectReadError(maxConsecutiveReadErrors)

	ctx, cancel := context.WithCancel(context.Background())
	counting := &countingSource{SyntheticSource: src, hopLimit: 20, cancel: cancel}

	core := NewAudioCore(counting, PresetDefault, -1)
	err := core.Run(ctx)
	assert.NoError(t, err)
}

func TestAudioCore_NoiseCalibrationRunCompletes(t *testing.T) {
	src := NewSyntheticSource(SilenceSegment(0))
	ctx, cancel := context.WithCancel(context.Background())
	hopLimit := int(4 * SampleRateHz / HopSize)
	counting := &countingSource{SyntheticSource: src, hopLimit: hopLimit, cancel: cancel}

	core := NewAudioCore(counting, PresetDefault, -1)
	core.Calibrator().Start(500, 1.2)
	runForHops(core, counting, ctx)

	assert.Equal(t, CalibrationComplete, core.Calibrator().State())
}

func TestSinceLastRender_ZeroWhenNotAdvanced(t *testing.T) {
	now := AudioTime{SampleIndex: 100, SampleRateHz: SampleRateHz}
	last := AudioTime{SampleIndex: 100, SampleRateHz: SampleRateHz}
	assert.Equal(t, int64(0), int64(SinceLastRender(now, last)))
}

func TestSinceLastRender_PositiveWhenAdvanced(t *testing.T) {
	now := AudioTime{SampleIndex: SampleRateHz, SampleRateHz: SampleRateHz}
	last := AudioTime{SampleIndex: 0, SampleRateHz: SampleRateHz}
	assert.Greater(t, SinceLastRender(now, last).Seconds(), 0.0)
}
