package audiocore

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// maxConsecutiveReadErrors is the number of back-to-back CaptureReadError
// results AudioTask tolerates before attempting to re-init the
// AudioSource (spec §4.1's degrade policy).
const maxConsecutiveReadErrors = 3

// AudioCore wires every DSP component into the fixed-cadence AudioTask
// loop described in spec §5: one hop of capture in, one ControlBusFrame
// published out, running on its own pinned OS thread.
type AudioCore struct {
	source AudioSource
	cpu    int

	dc        *DCBlocker
	agc       *AGC
	noise     *NoiseFloor
	goertzel  *GoertzelAnalyzer
	goertzel64 *Goertzel64Analyzer
	chroma    *ChromaAnalyzer
	flux      *NoveltyFlux
	tempo     *TempoTracker
	bus       *ControlBus
	calib     *NoiseCalibrator

	tuning   *SeqlockValue[TuningPipeline]
	contract *SeqlockValue[TuningContract]
	frames   *SnapshotBuffer[ControlBusFrame]

	now AudioTime

	consecutiveReadErrors int

	lastGain     float32
	lastTempo    TempoOutput

	log *log.Logger
}

// Stats is the observability snapshot described by spec §6: capture
// health, lookahead-despike effectiveness, current AGC gain, per-band
// noise floors, and the tempo tracker's published state.
type Stats struct {
	Capture    CaptureStats
	Spikes     SpikeDetectionStats
	AGCGain    float32
	NoiseFloor [NumBands]float32
	Tempo      TempoOutput
}

// Stats returns a point-in-time observability snapshot, safe to call
// from any goroutine.
func (ac *AudioCore) Stats() Stats {
	var floors [NumBands]float32
	for i := range floors {
		floors[i] = ac.noise.Floor(i)
	}
	return Stats{
		Capture:    ac.source.Stats(),
		Spikes:     ac.bus.SpikeStats(),
		AGCGain:    ac.lastGain,
		NoiseFloor: floors,
		Tempo:      ac.lastTempo,
	}
}

// NewAudioCore builds an AudioCore around source, starting from the
// given preset, ready to Run on a dedicated goroutine. cpu selects the
// OS thread's CPU affinity (spec §5); pass a negative value to skip
// pinning.
func NewAudioCore(source AudioSource, preset PresetName, cpu int) *AudioCore {
	tuning := ApplyPreset(preset)
	ac := &AudioCore{
		source:     source,
		cpu:        cpu,
		dc:         NewDCBlocker(),
		agc:        NewAGC(),
		noise:      NewNoiseFloor(),
		goertzel:   NewGoertzelAnalyzer(SampleRateHz),
		goertzel64: NewGoertzel64Analyzer(SampleRateHz),
		chroma:     NewChromaAnalyzer(SampleRateHz),
		flux:       NewNoveltyFlux(),
		tempo:      NewTempoTracker(SampleRateHz),
		calib:      NewNoiseCalibrator(),
		tuning:     NewSeqlockValue(tuning),
		contract:   NewSeqlockValue(DefaultTuningContract()),
		frames:     NewSnapshotBuffer[ControlBusFrame](),
		now:        AudioTime{SampleIndex: 0, SampleRateHz: SampleRateHz},
		log:        Logger,
	}
	ac.bus = NewControlBus()
	return ac
}

// Frames returns the SnapshotBuffer RenderTask should read published
// ControlBusFrames from.
func (ac *AudioCore) Frames() *SnapshotBuffer[ControlBusFrame] { return ac.frames }

// Tuning returns the seqlock-guarded live TuningPipeline for RenderTask
// to write overrides into.
func (ac *AudioCore) Tuning() *SeqlockValue[TuningPipeline] { return ac.tuning }

// Contract returns the seqlock-guarded live TuningContract.
func (ac *AudioCore) Contract() *SeqlockValue[TuningContract] { return ac.contract }

// Calibrator returns the NoiseCalibrator so RenderTask can Start() a
// calibration run and poll its state.
func (ac *AudioCore) Calibrator() *NoiseCalibrator { return ac.calib }

// Run locks the calling goroutine to its OS thread, optionally pins it
// to ac.cpu, and drives the AudioTask loop until ctx is canceled or
// source.Init fails fatally. It returns the error from Init, if any, or
// nil on a clean ctx-cancellation shutdown.
func (ac *AudioCore) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if ac.cpu >= 0 {
		if err := pinCurrentThread(ac.cpu); err != nil {
			ac.log.Warn("cpu pin failed", "cpu", ac.cpu, "err", err)
		}
	}

	if err := ac.source.Init(); err != nil {
		ac.log.Error("audio source init failed", "err", err)
		return err
	}
	defer ac.source.Close()

	var hop Hop
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		result := ac.source.CaptureHop(&hop)
		switch result {
		case CaptureOK:
			ac.consecutiveReadErrors = 0
			ac.processHop(&hop)
			ac.now = ac.now.Advance()

		case CaptureDMATimeout:
			ac.log.Warn("capture dma timeout")

		case CaptureReadError, CaptureNotInitialized:
			ac.consecutiveReadErrors++
			ac.log.Warn("capture read error", "consecutive", ac.consecutiveReadErrors)
			if ac.consecutiveReadErrors >= maxConsecutiveReadErrors {
				ac.log.Warn("re-initializing audio source after repeated errors")
				if err := ac.reinit(); err != nil {
					ac.log.Error("audio source reinit failed", "err", err)
					return err
				}
				ac.consecutiveReadErrors = 0
			}
		}
	}
}

func (ac *AudioCore) reinit() error {
	_ = ac.source.Close()
	return ac.source.Init()
}

// processHop runs one hop through the full DSP chain and ControlBus and
// publishes one frame per hop; when the analyzer windows have no fresh
// output, their previous output is reused and flux is zero. Grounded on
// spec §5's per-hop pipeline ordering: DC -> AGC -> analyzers -> noise
// floor -> tempo -> ControlBus -> publish.
func (ac *AudioCore) processHop(hop *Hop) {
	t := ac.tuning.Read()
	contract := ac.contract.Read()

	ac.dc.ProcessHop(hop)

	gain := ac.agc.Process(hop, &t, ac.noise.Average())
	ApplyGain(hop, gain)
	ac.lastGain = gain

	rms := rmsOf(hop)
	clipping := isClipping(hop, agcClipThresholdAbs)

	ac.goertzel.Feed(hop)
	ac.goertzel64.Feed(hop)
	ac.chroma.Feed(hop)

	var bands [NumBands]float32
	var bins64 [NumBins64]float32
	var chroma [NumChroma]float32

	bandsFresh := ac.goertzel.Analyze(&bands, &t)
	ac.goertzel64.Analyze(&bins64, &t)
	ac.chroma.Analyze(&chroma)

	ac.noise.Update(bands, t.NoiseFloorRise, t.NoiseFloorFall, t.NoiseFloorMin, clipping)
	gated := ac.noise.Subtract(bands, &t)

	var flux float32
	if bandsFresh {
		flux = ac.flux.Update(gated)
		if t.UseSpectralFlux {
			flux *= t.SpectralFluxScale
		}
		flux *= t.FluxScale
		flux = clamp01(flux)
	}

	tempoOut := ac.tempo.Update(flux, rms, &contract)
	ac.lastTempo = tempoOut

	if ac.calib.State() == CalibrationRequested || ac.calib.State() == CalibrationMeasuring {
		changed := ac.calib.Update(ac.now.SampleIndex, rms, gated, chroma)
		if changed && ac.calib.State() == CalibrationComplete {
			ac.log.Info("noise calibration complete")
		} else if changed && ac.calib.State() == CalibrationFailed {
			ac.log.Warn("noise calibration failed: signal too loud")
		}
	}

	raw := ControlBusRawInput{
		RMS:             rms,
		Flux:            flux,
		Bands:           gated,
		Chroma:          chroma,
		Waveform:        *hop,
		Bins64:          bins64,
		TempoLocked:     tempoOut.Locked,
		TempoConfidence: tempoOut.Confidence,
		TempoBeatTick:   tempoOut.BeatTick,
	}

	frame := ac.bus.UpdateFromHop(ac.now, &raw, &t)
	ac.frames.Publish(frame)
}

// SinceLastRender is a lightweight staleness check RenderTask can use
// against AudioStalenessMs, built directly on the published frame's
// monotonic timestamp rather than a separate heartbeat channel.
func SinceLastRender(now, last AudioTime) time.Duration {
	if now.SampleIndex <= last.SampleIndex {
		return 0
	}
	samples := now.SampleIndex - last.SampleIndex
	return time.Duration(samples) * time.Second / time.Duration(now.SampleRateHz)
}
