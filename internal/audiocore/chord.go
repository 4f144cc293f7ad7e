package audiocore

// chordTemplate pairs a chord quality with the semitone offsets (from
// the root) of its third and fifth, per spec §4.9 step 5's interval
// description ("root+{3,4}" for the third, "root+{6,7,8}" for the
// fifth).
type chordTemplate struct {
	Type  ChordType
	Third int
	Fifth int
}

var chordTemplates = [4]chordTemplate{
	{ChordMajor, 4, 7},
	{ChordMinor, 3, 7},
	{ChordDiminished, 3, 6},
	{ChordAugmented, 4, 8},
}

// detectChord finds the dominant pitch class in the (already smoothed)
// chroma vector and classifies the best-matching triad, following spec
// §4.9 step 5 and grounded on original_source's detectChord /
// ChordState (contracts/ControlBus.h).
func detectChord(chroma [NumChroma]float32, thresholdRatio, triadRatioMin float32) ChordState {
	root := 0
	var rootStrength float32
	for i, v := range chroma {
		if v > rootStrength {
			rootStrength = v
			root = i
		}
	}

	var total float32
	for _, v := range chroma {
		total += v
	}

	state := ChordState{
		RootNote:     uint8(root),
		Type:         ChordNone,
		RootStrength: rootStrength,
	}
	if total <= agcEpsilon || rootStrength <= agcEpsilon {
		return state
	}

	var bestTriadEnergy float32 = -1
	for _, tmpl := range chordTemplates {
		thirdStrength := chroma[(root+tmpl.Third)%NumChroma]
		fifthStrength := chroma[(root+tmpl.Fifth)%NumChroma]

		if thirdStrength <= thresholdRatio*rootStrength {
			continue
		}
		if fifthStrength <= thresholdRatio*rootStrength {
			continue
		}

		triadEnergy := rootStrength + thirdStrength + fifthStrength
		if triadEnergy/total <= triadRatioMin {
			continue
		}
		if triadEnergy > bestTriadEnergy {
			bestTriadEnergy = triadEnergy
			state.Type = tmpl.Type
			state.ThirdStrength = thirdStrength
			state.FifthStrength = fifthStrength
			state.Confidence = clamp01(triadEnergy / total)
		}
	}

	return state
}
