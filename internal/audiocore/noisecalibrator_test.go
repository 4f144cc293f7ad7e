package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseCalibrator_StartTransitionsIdleToRequested(t *testing.T) {
	c := NewNoiseCalibrator()
	assert.Equal(t, CalibrationIdle, c.State())
	c.Start(1000, 1.2)
	assert.Equal(t, CalibrationRequested, c.State())
}

func TestNoiseCalibrator_StartFallsBackToDefaultsOnNonPositiveInputs(t *testing.T) {
	c := NewNoiseCalibrator()
	c.Start(0, 0)
	assert.Equal(t, float32(defaultCalibrationDurationMs), c.durationMs)
	assert.Equal(t, float32(defaultCalibrationSafetyMultiplier), c.safetyMultiplier)
}

func TestNoiseCalibrator_CompletesDeterministicallyForFixedInput(t *testing.T) {
	c := NewNoiseCalibrator()
	c.Start(100, 1.5) // 100ms at 16kHz -> short run

	var bands [NumBands]float32
	var chroma [NumChroma]float32
	for i := range bands {
		bands[i] = 0.01 * float32(i+1)
	}
	chroma[0] = 0.02

	var sampleIndex uint64
	for c.State() != CalibrationComplete && c.State() != CalibrationFailed {
		c.Update(sampleIndex, 0.01, bands, chroma)
		sampleIndex += HopSize
	}

	assert.Equal(t, CalibrationComplete, c.State())
	result := c.Result()
	assert.True(t, result.Valid)
	assert.Greater(t, result.SampleCount, uint32(0))
	for i := range bands {
		expected := bands[i] * 1.5
		assert.InDelta(t, expected, result.BandFloors[i], 1e-4)
	}
}

func TestNoiseCalibrator_AbortsToFailedWhenTooLoud(t *testing.T) {
	c := NewNoiseCalibrator()
	c.Start(3000, 1.2)

	var bands [NumBands]float32
	var chroma [NumChroma]float32

	var sampleIndex uint64
	// First hop transitions Requested->Measuring (RMS below the sanity cap).
	c.Update(sampleIndex, 0.01, bands, chroma)
	sampleIndex += HopSize

	// A loud hop while Measuring should abort the run.
	for i := 0; i < 50 && c.State() == CalibrationMeasuring; i++ {
		c.Update(sampleIndex, defaultCalibrationMaxAllowedRMS+0.1, bands, chroma)
		sampleIndex += HopSize
	}

	assert.Equal(t, CalibrationFailed, c.State())
}

func TestNoiseCalibrator_RequestedStaysPutWhileTooLoudToStart(t *testing.T) {
	c := NewNoiseCalibrator()
	c.Start(1000, 1.2)

	var bands [NumBands]float32
	var chroma [NumChroma]float32
	changed := c.Update(0, defaultCalibrationMaxAllowedRMS+0.1, bands, chroma)

	assert.False(t, changed)
	assert.Equal(t, CalibrationRequested, c.State())
}

func TestNoiseCalibrator_ApplyToTuningNoopUnlessValid(t *testing.T) {
	c := NewNoiseCalibrator()
	tuning := DefaultTuning()
	applied := c.ApplyToTuning(&tuning)
	assert.False(t, applied)
	assert.False(t, tuning.UsePerBandNoiseFloor)
}

func TestNoiseCalibrator_ApplyToTuningCopiesBandFloors(t *testing.T) {
	c := NewNoiseCalibrator()
	c.Start(50, 1.0)

	var bands [NumBands]float32
	for i := range bands {
		bands[i] = 0.02
	}
	var chroma [NumChroma]float32

	var sampleIndex uint64
	for c.State() != CalibrationComplete && c.State() != CalibrationFailed {
		c.Update(sampleIndex, 0.01, bands, chroma)
		sampleIndex += HopSize
	}
	assert.Equal(t, CalibrationComplete, c.State())

	tuning := DefaultTuning()
	applied := c.ApplyToTuning(&tuning)
	assert.True(t, applied)
	assert.True(t, tuning.UsePerBandNoiseFloor)
	assert.InDelta(t, 0.02, tuning.PerBandNoiseFloors[0], 1e-4)
}
