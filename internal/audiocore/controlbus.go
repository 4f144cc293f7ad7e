package audiocore

// ControlBus takes the raw per-hop DSP measurements and produces the
// publishable ControlBusFrame, running the 9-step pipeline described in
// spec §4.9: clamp, lookahead despike, zone AGC, asymmetric smoothing,
// chord detection, saliency, style classification, silence gating, and
// publish. Grounded on original_source's ControlBus class
// (contracts/ControlBus.h); the audio thread owns one instance and
// calls UpdateFromHop once per hop.
type ControlBus struct {
	rmsSmoothed     float32
	fluxSmoothed    float32
	fastRMS         float32
	fastFlux        float32

	bandsSmoothed  [NumBands]float32
	chromaSmoothed [NumChroma]float32
	heavyBands     [NumBands]float32
	heavyChroma    [NumChroma]float32

	lookaheadBands  *lookaheadBuffer
	lookaheadChroma *lookaheadBuffer
	spikeStats      SpikeDetectionStats

	bandZones   *zoneAGCBank
	chromaZones *zoneAGCBank

	saliency *saliencyTracker
	silence  *silenceGate

	hopSeq uint32
	haveSeq bool

	frame ControlBusFrame
}

// NewControlBus builds a ControlBus ready to process hops; all tuning
// parameters (including zone-AGC rates) are read fresh from Tuning on
// each UpdateFromHop call.
func NewControlBus() *ControlBus {
	cb := &ControlBus{
		lookaheadBands:  newLookaheadBuffer(NumBands),
		lookaheadChroma: newLookaheadBuffer(NumChroma),
		bandZones:       newZoneAGCBank(NumBands),
		chromaZones:     newZoneAGCBank(NumChroma),
		saliency:        newSaliencyTracker(),
		silence:         newSilenceGate(),
	}
	cb.Reset()
	return cb
}

// Reset clears all smoothing and bookkeeping state.
func (cb *ControlBus) Reset() {
	cb.rmsSmoothed = 0
	cb.fluxSmoothed = 0
	cb.fastRMS = 0
	cb.fastFlux = 0
	cb.bandsSmoothed = [NumBands]float32{}
	cb.chromaSmoothed = [NumChroma]float32{}
	cb.heavyBands = [NumBands]float32{}
	cb.heavyChroma = [NumChroma]float32{}
	cb.lookaheadBands.reset()
	cb.lookaheadChroma.reset()
	cb.spikeStats = SpikeDetectionStats{}
	cb.bandZones.reset()
	cb.chromaZones.reset()
	cb.saliency.reset()
	cb.silence.reset()
	cb.hopSeq = 0
	cb.haveSeq = false
	cb.frame = ControlBusFrame{}
}

// SpikeStats returns a copy of the current lookahead-despike telemetry.
func (cb *ControlBus) SpikeStats() SpikeDetectionStats { return cb.spikeStats }

// UpdateFromHop runs the full pipeline for one hop and returns the
// resulting frame (also cached; see Frame()).
func (cb *ControlBus) UpdateFromHop(now AudioTime, raw *ControlBusRawInput, t *TuningPipeline) ControlBusFrame {
	// 1. Clamp all unit-interval inputs.
	rms := clamp01(raw.RMS)
	flux := clamp01(raw.Flux)
	var bandsC [NumBands]float32
	var chromaC [NumChroma]float32
	for i, v := range raw.Bands {
		bandsC[i] = clamp01(v)
	}
	for i, v := range raw.Chroma {
		chromaC[i] = clamp01(v)
	}

	// 2. Lookahead despike (bands and chroma independently).
	cb.lookaheadBands.push(bandsC[:])
	cb.lookaheadChroma.push(chromaC[:])

	var bandsDespiked [NumBands]float32
	var chromaDespiked [NumChroma]float32
	cb.lookaheadBands.despike(bandsDespiked[:], t.SpikeThreshold, &cb.spikeStats, true)
	cb.lookaheadChroma.despike(chromaDespiked[:], t.SpikeThreshold, &cb.spikeStats, false)
	if !t.DespikeEnabled {
		bandsDespiked = bandsC
		chromaDespiked = chromaC
	}

	// 3. Zone AGC (optional).
	bandsZoned := bandsDespiked
	chromaZoned := chromaDespiked
	if t.ZoneAGCEnabled {
		cb.bandZones.process(bandsZoned[:], t)
		cb.chromaZones.process(chromaZoned[:], t)
	}

	// 4. Asymmetric attack/release smoothing (normal + heavy pair).
	for i := range cb.bandsSmoothed {
		cb.bandsSmoothed[i] = smoothAttackRelease(cb.bandsSmoothed[i], bandsZoned[i], t.BandAttack, t.BandRelease)
		cb.heavyBands[i] = smoothAttackRelease(cb.heavyBands[i], bandsZoned[i], t.HeavyBandAttack, t.HeavyBandRelease)
	}
	for i := range cb.chromaSmoothed {
		cb.chromaSmoothed[i] = smoothAttackRelease(cb.chromaSmoothed[i], chromaZoned[i], t.BandAttack, t.BandRelease)
		cb.heavyChroma[i] = smoothAttackRelease(cb.heavyChroma[i], chromaZoned[i], t.HeavyBandAttack, t.HeavyBandRelease)
	}

	cb.rmsSmoothed = lerp(cb.rmsSmoothed, rms, t.AlphaSlow)
	cb.fluxSmoothed = lerp(cb.fluxSmoothed, flux, t.AlphaSlow)
	cb.fastRMS = lerp(cb.fastRMS, rms, t.AlphaFast)
	cb.fastFlux = lerp(cb.fastFlux, flux, t.AlphaFast)

	// 5. Chord detection.
	chord := detectChord(cb.chromaSmoothed, 0.5, t.ChordTriadRatioMin)

	// 6. Saliency.
	sal := cb.saliency.update(cb.bandsSmoothed, cb.chromaSmoothed, cb.fluxSmoothed, raw.TempoConfidence, t)

	// 7. Style detection.
	var meanBand float32
	for _, v := range cb.bandsSmoothed {
		meanBand += v
	}
	meanBand /= float32(NumBands)
	style, styleConf := classifyStyle(sal, meanBand)

	// 8. Silence detection.
	silentScale, isSilent := cb.silence.update(now.SampleIndex, cb.rmsSmoothed, t.SilenceThreshold, t.SilenceHysteresisMs)

	// 9. Publish.
	if !cb.haveSeq {
		cb.hopSeq = 1
		cb.haveSeq = true
	} else {
		cb.hopSeq++
	}

	var waveform [Waveform128Len]int16
	downsampleWaveform(&raw.Waveform, &waveform)

	cb.frame = ControlBusFrame{
		T:      now,
		HopSeq: cb.hopSeq,

		RMS:      clamp01(cb.rmsSmoothed),
		Flux:     clamp01(cb.fluxSmoothed),
		FastRMS:  clamp01(cb.fastRMS),
		FastFlux: clamp01(cb.fastFlux),

		Bands:       cb.bandsSmoothed,
		Chroma:      cb.chromaSmoothed,
		HeavyBands:  cb.heavyBands,
		HeavyChroma: cb.heavyChroma,

		Waveform: waveform,
		Bins64:   raw.Bins64,

		ChordState: chord,
		Saliency:   sal,

		CurrentStyle:    style,
		StyleConfidence: clamp01(styleConf),

		SnareEnergy:  clamp01(raw.SnareEnergy),
		HihatEnergy:  clamp01(raw.HihatEnergy),
		SnareTrigger: raw.SnareTrigger,
		HihatTrigger: raw.HihatTrigger,

		TempoLocked:     raw.TempoLocked,
		TempoConfidence: clamp01(raw.TempoConfidence),
		TempoBeatTick:   raw.TempoBeatTick,

		SilentScale: clamp01(silentScale),
		IsSilent:    isSilent,
	}

	return cb.frame
}

// Frame returns the most recently published frame by value.
func (cb *ControlBus) Frame() ControlBusFrame { return cb.frame }
