package audiocore

// classifyStyle is a coarse, fixed-threshold style classifier over the
// four saliency scalars and mean band energy. Spec §4.9 step 7 leaves
// the algorithm unspecified beyond "the output fields must be populated
// each hop"; this implements the {Unknown, Ambient, Electronic,
// Acoustic, Percussive} 5-class scheme decided for that open question,
// scoring each class with a simple weighted combination and picking the
// argmax with a margin-based confidence.
func classifyStyle(s Saliency, meanBand float32) (MusicStyle, float32) {
	if meanBand < 0.02 {
		return StyleUnknown, 0
	}

	scores := [4]float32{
		// Ambient: tonal, sparse, low rhythmic drive.
		s.Harmonic*0.5 + (1-s.Rhythmic)*0.3 + (1-s.DynamicNovelty)*0.2,
		// Electronic: strong beat, broadband timbral movement.
		s.Rhythmic*0.45 + s.DynamicNovelty*0.35 + s.Timbral*0.2,
		// Acoustic: tonal and steady, moderate dynamics.
		s.Harmonic*0.5 + (1-s.Timbral)*0.3 + (1-s.DynamicNovelty)*0.2,
		// Percussive: high novelty and timbral churn, weak tonal center.
		s.DynamicNovelty*0.45 + s.Timbral*0.35 + (1-s.Harmonic)*0.2,
	}
	styles := [4]MusicStyle{StyleAmbient, StyleElectronic, StyleAcoustic, StylePercussive}

	bestIdx := 0
	best := scores[0]
	secondBest := float32(-1)
	for i := 1; i < len(scores); i++ {
		if scores[i] > best {
			secondBest = best
			best = scores[i]
			bestIdx = i
		} else if scores[i] > secondBest {
			secondBest = scores[i]
		}
	}
	if secondBest < 0 {
		secondBest = 0
	}

	confidence := clamp01(best - secondBest + 0.5)
	return styles[bestIdx], confidence
}
