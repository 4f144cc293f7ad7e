package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDCBlocker_RemovesConstantOffset(t *testing.T) {
	d := NewDCBlocker()
	var hop Hop
	for i := range hop {
		hop[i] = 1000
	}
	for pass := 0; pass < 50; pass++ {
		d.ProcessHop(&hop)
	}
	for _, s := range hop {
		assert.Less(t, abs16(s), int16(50), "DC offset should be mostly removed after settling")
	}
}

func TestDCBlocker_Reset(t *testing.T) {
	d := NewDCBlocker()
	hop := Hop{}
	for i := range hop {
		hop[i] = 5000
	}
	d.ProcessHop(&hop)
	d.Reset()
	assert.Zero(t, d.x1)
	assert.Zero(t, d.y1)
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func TestAGC_GainStaysWithinConfiguredBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAGC()
		tuning := DefaultTuning()
		amplitude := rapid.Int32Range(0, 32000).Draw(t, "amplitude")

		var hop Hop
		for i := range hop {
			if i%2 == 0 {
				hop[i] = int16(amplitude)
			} else {
				hop[i] = int16(-amplitude)
			}
		}

		for i := 0; i < 20; i++ {
			g := a.Process(&hop, &tuning, 0.001)
			assert.GreaterOrEqual(t, g, tuning.AGCMinGain)
			assert.LessOrEqual(t, g, tuning.AGCMaxGain)
		}
	})
}

func TestAGC_ClipReducesGain(t *testing.T) {
	a := NewAGC()
	tuning := DefaultTuning()
	a.gain = 10.0

	var hop Hop
	for i := range hop {
		hop[i] = 32100 // above agcClipThresholdAbs
	}

	before := a.gain
	a.Process(&hop, &tuning, 0.001)
	assert.Less(t, a.gain, before)
}

func TestNoiseFloor_FreezesDuringClipping(t *testing.T) {
	nf := NewNoiseFloor()
	before := nf.floor
	var loud [NumBands]float32
	for i := range loud {
		loud[i] = 0.9
	}
	nf.Update(loud, 0.01, 0.01, InitialNoiseFloor, true)
	assert.Equal(t, before, nf.floor, "update must be a no-op while clipping")
}

func TestNoiseFloor_TracksDownToQuieterSignal(t *testing.T) {
	nf := NewNoiseFloor()
	var quiet [NumBands]float32
	for i := range quiet {
		quiet[i] = 1e-8
	}
	for i := 0; i < 500; i++ {
		nf.Update(quiet, 0.01, 0.5, 0.0, false)
	}
	for i := range quiet {
		assert.Less(t, nf.Floor(i), float32(1e-3))
	}
}

func TestNoiseFloor_NeverBelowFloorMin(t *testing.T) {
	nf := NewNoiseFloor()
	var silent [NumBands]float32
	for i := 0; i < 1000; i++ {
		nf.Update(silent, 0.5, 0.5, 0.001, false)
	}
	for i := 0; i < NumBands; i++ {
		assert.GreaterOrEqual(t, nf.Floor(i), float32(0.001))
	}
}

func TestNoiseFloor_SubtractGatesBelowThreshold(t *testing.T) {
	nf := NewNoiseFloor()
	tuning := DefaultTuning()
	var mags [NumBands]float32
	for i := range mags {
		mags[i] = InitialNoiseFloor * 0.5 // below gate_start_factor * floor
	}
	out := nf.Subtract(mags, &tuning)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}
}

func TestNoveltyFlux_SilenceProducesNoFlux(t *testing.T) {
	nf := NewNoveltyFlux()
	var zero [NumBands]float32
	for i := 0; i < 10; i++ {
		v := nf.Update(zero)
		assert.Equal(t, float32(0), v)
	}
}

func TestNoveltyFlux_BoundedByTen(t *testing.T) {
	nf := NewNoveltyFlux()
	var zero, loud [NumBands]float32
	for i := range loud {
		loud[i] = 1.0
	}
	nf.Update(zero)
	v := nf.Update(loud)
	assert.LessOrEqual(t, v, float32(10))
	assert.GreaterOrEqual(t, v, float32(0))
}
