package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// feedClickTrain drives a TempoTracker with periodic flux/RMS pulses at
// the given BPM for seconds, as a stand-in for a real click-train passed
// through the full DSP chain to onset flux.
func feedClickTrain(tr *TempoTracker, contract *TuningContract, bpm float32, seconds float32) TempoOutput {
	periodSamples := uint64(60 * SampleRateHz / bpm)
	totalSamples := uint64(seconds * SampleRateHz)

	var out TempoOutput
	var sampleIndex uint64
	for sampleIndex < totalSamples {
		phaseInPeriod := sampleIndex % periodSamples
		var flux, rms float32
		if phaseInPeriod < HopSize {
			flux = 1.0
			rms = 0.2
		} else {
			rms = 0.01
		}
		out = tr.Update(flux, rms, contract)
		sampleIndex += HopSize
	}
	return out
}

func TestTempoTracker_LocksOnSteadyClickTrain(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	out := feedClickTrain(tr, &contract, 120, 8)

	assert.Equal(t, TempoLocked, tr.State())
	assert.True(t, out.Locked)
	assert.InDelta(t, 120, out.BPM, 6)
}

func TestTempoTracker_BPMStaysWithinContractBounds(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()
	contract.BPMMin = 80
	contract.BPMMax = 160

	out := feedClickTrain(tr, &contract, 120, 6)

	assert.GreaterOrEqual(t, out.BPM, contract.BPMMin)
	assert.LessOrEqual(t, out.BPM, contract.BPMMax)
}

func TestTempoTracker_BeatTickOnlyWhenLocked(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	periodSamples := uint64(60 * SampleRateHz / 120)
	var sampleIndex uint64
	sawTickBeforeLock := false
	for sampleIndex < uint64(2*SampleRateHz) {
		phaseInPeriod := sampleIndex % periodSamples
		var flux, rms float32
		if phaseInPeriod < HopSize {
			flux = 1.0
			rms = 0.2
		} else {
			rms = 0.01
		}
		out := tr.Update(flux, rms, &contract)
		if out.BeatTick && tr.State() != TempoLocked {
			sawTickBeforeLock = true
		}
		sampleIndex += HopSize
	}
	assert.False(t, sawTickBeforeLock, "beat_tick must never fire outside the Locked state")
}

func TestTempoTracker_BeatTickAtMostOncePerPeriod(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	periodSamples := uint64(60 * SampleRateHz / 120)
	totalSamples := uint64(10 * SampleRateHz)
	var sampleIndex uint64
	ticks := 0
	for sampleIndex < totalSamples {
		phaseInPeriod := sampleIndex % periodSamples
		var flux, rms float32
		if phaseInPeriod < HopSize {
			flux = 1.0
			rms = 0.2
		} else {
			rms = 0.01
		}
		out := tr.Update(flux, rms, &contract)
		if out.BeatTick {
			ticks++
		}
		sampleIndex += HopSize
	}

	// Once locked, ticks should fire roughly once per beat period; allow
	// generous slack for the settling window before lock is achieved.
	expectedBeats := totalSamples / periodSamples
	assert.LessOrEqual(t, ticks, int(expectedBeats)+2)
}

func TestTempoTracker_SilenceStaysSearching(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	var hop [NumBands]float32
	_ = hop
	for i := 0; i < 200; i++ {
		tr.Update(0, 0, &contract)
	}
	assert.Equal(t, TempoSearching, tr.State())
}

func TestTempoTracker_DemotesToSearchingAfterOnsetsStop(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	feedClickTrain(tr, &contract, 120, 8)
	assert.Equal(t, TempoLocked, tr.State())

	// Silence for longer than the searching timeout should demote back.
	silentSamples := uint64(4 * SampleRateHz)
	var sampleIndex uint64
	for sampleIndex < silentSamples {
		tr.Update(0, 0.001, &contract)
		sampleIndex += HopSize
	}
	assert.Equal(t, TempoSearching, tr.State())
}

func TestTempoTracker_PhaseStaysInUnitRange(t *testing.T) {
	tr := NewTempoTracker(SampleRateHz)
	contract := DefaultTuningContract()

	out := feedClickTrain(tr, &contract, 95, 5)
	assert.GreaterOrEqual(t, out.Phase01, float32(0))
	assert.Less(t, out.Phase01, float32(1))
}
