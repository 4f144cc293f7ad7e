package audiocore

import "math"

// centroidHistoryLen is "the last N frames" used for timbral drift
// (spec §4.9 step 6).
const centroidHistoryLen = 16

// saliencyTracker accumulates the per-hop state needed to compute the
// four musical-saliency scalars (spec §4.9 step 6): harmonic, rhythmic,
// timbral, and dynamic_novelty. Grounded on original_source's
// MusicalSaliency concept (referenced, not retrieved, by
// contracts/ControlBus.h) and implemented here directly from spec.md.
type saliencyTracker struct {
	rhythmicSmoothed float32

	centroidHistory [centroidHistoryLen]float32
	centroidCount   int
	centroidIdx     int
	centroidEMA     float32
	haveCentroidEMA bool
}

func newSaliencyTracker() *saliencyTracker {
	s := &saliencyTracker{}
	s.reset()
	return s
}

func (s *saliencyTracker) reset() {
	s.rhythmicSmoothed = 0
	s.centroidHistory = [centroidHistoryLen]float32{}
	s.centroidCount = 0
	s.centroidIdx = 0
	s.haveCentroidEMA = false
}

// bandCentroid computes the spectral centroid (energy-weighted mean band
// index, normalized to [0,1]) of an 8-band magnitude vector.
func bandCentroid(bands [NumBands]float32) float32 {
	var weighted, total float32
	for i, v := range bands {
		weighted += float32(i) * v
		total += v
	}
	if total <= agcEpsilon {
		return 0
	}
	return weighted / total / float32(NumBands-1)
}

// chromaConcentration returns an entropy-based concentration measure in
// [0,1]: 1 when energy is concentrated in a single pitch class, 0 when
// it is spread evenly across all twelve.
func chromaConcentration(chroma [NumChroma]float32) float32 {
	var total float32
	for _, v := range chroma {
		total += v
	}
	if total <= agcEpsilon {
		return 0
	}
	var entropy float64
	for _, v := range chroma {
		p := float64(v) / float64(total)
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	maxEntropy := math.Log(float64(NumChroma))
	normalized := entropy / maxEntropy
	return clamp01(1 - float32(normalized))
}

// update computes this hop's Saliency from the smoothed bands/chroma,
// flux, and the tempo tracker's confidence output.
func (s *saliencyTracker) update(bands [NumBands]float32, chroma [NumChroma]float32, flux float32, tempoConfidence float32, t *TuningPipeline) Saliency {
	harmonic := chromaConcentration(chroma)

	s.rhythmicSmoothed = lerp(s.rhythmicSmoothed, clamp01(tempoConfidence), t.AlphaSlow)

	centroid := bandCentroid(bands)
	s.centroidHistory[s.centroidIdx] = centroid
	s.centroidIdx = (s.centroidIdx + 1) % centroidHistoryLen
	if s.centroidCount < centroidHistoryLen {
		s.centroidCount++
	}
	if !s.haveCentroidEMA {
		s.centroidEMA = centroid
		s.haveCentroidEMA = true
	} else {
		s.centroidEMA = lerp(s.centroidEMA, centroid, t.AlphaFast)
	}
	var drift float32
	if s.centroidCount > 0 {
		for i := 0; i < s.centroidCount; i++ {
			d := s.centroidHistory[i] - s.centroidEMA
			if d < 0 {
				d = -d
			}
			drift += d
		}
		drift /= float32(s.centroidCount)
	}
	timbral := clamp01(drift * 4)

	dynamicNovelty := clamp01(flux * t.SpectralFluxScale)

	return Saliency{
		Harmonic:       harmonic,
		Rhythmic:       clamp01(s.rhythmicSmoothed),
		Timbral:        timbral,
		DynamicNovelty: dynamicNovelty,
	}
}
