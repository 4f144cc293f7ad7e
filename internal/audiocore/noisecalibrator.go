package audiocore

// CalibrationState is the NoiseCalibrator's state machine (spec §4.11),
// grounded on original_source's CalibrationState enum (AudioTuning.h).
type CalibrationState uint8

const (
	CalibrationIdle CalibrationState = iota
	CalibrationRequested
	CalibrationMeasuring
	CalibrationComplete
	CalibrationFailed
)

func (s CalibrationState) String() string {
	switch s {
	case CalibrationRequested:
		return "Requested"
	case CalibrationMeasuring:
		return "Measuring"
	case CalibrationComplete:
		return "Complete"
	case CalibrationFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

// NoiseCalibrationResult holds the measured averages once calibration
// completes.
type NoiseCalibrationResult struct {
	BandFloors   [NumBands]float32
	ChromaFloors [NumChroma]float32
	OverallRMS   float32
	PeakRMS      float32
	SampleCount  uint32
	Valid        bool
}

// defaultCalibrationDurationMs / defaultCalibrationSafetyMultiplier /
// defaultCalibrationMaxAllowedRMS match original_source's
// NoiseCalibrationState defaults exactly.
const (
	defaultCalibrationDurationMs       = 3000.0
	defaultCalibrationSafetyMultiplier = 1.2
	defaultCalibrationMaxAllowedRMS    = 0.15
)

// NoiseCalibrator accumulates per-band and per-chroma sums during a
// silent measurement period and, on success, produces noise-floor
// estimates ready to apply to TuningPipeline (spec §4.11).
type NoiseCalibrator struct {
	state CalibrationState

	durationMs       float32
	safetyMultiplier float32
	maxAllowedRMS    float32

	startSample      uint64
	haveStartSample  bool

	bandSum   [NumBands]float32
	chromaSum [NumChroma]float32
	rmsSum    float32
	peakRMS   float32
	samples   uint32

	result NoiseCalibrationResult
}

// NewNoiseCalibrator returns an idle calibrator.
func NewNoiseCalibrator() *NoiseCalibrator {
	c := &NoiseCalibrator{}
	c.reset()
	return c
}

func (c *NoiseCalibrator) reset() {
	c.state = CalibrationIdle
	c.durationMs = 0
	c.safetyMultiplier = 0
	c.maxAllowedRMS = 0
	c.haveStartSample = false
	c.bandSum = [NumBands]float32{}
	c.chromaSum = [NumChroma]float32{}
	c.rmsSum = 0
	c.peakRMS = 0
	c.samples = 0
	c.result = NoiseCalibrationResult{}
}

// State returns the current calibration state.
func (c *NoiseCalibrator) State() CalibrationState { return c.state }

// Result returns the last completed calibration result (zero value with
// Valid=false if none has completed).
func (c *NoiseCalibrator) Result() NoiseCalibrationResult { return c.result }

// Start requests a calibration run of durationMs using safetyMultiplier
// and the default max-allowed-RMS sanity cap, transitioning Idle ->
// Requested. durationMs <= 0 or safetyMultiplier <= 0 fall back to
// original_source's defaults.
func (c *NoiseCalibrator) Start(durationMs, safetyMultiplier float32) {
	if durationMs <= 0 {
		durationMs = defaultCalibrationDurationMs
	}
	if safetyMultiplier <= 0 {
		safetyMultiplier = defaultCalibrationSafetyMultiplier
	}
	c.reset()
	c.state = CalibrationRequested
	c.durationMs = durationMs
	c.safetyMultiplier = safetyMultiplier
	c.maxAllowedRMS = defaultCalibrationMaxAllowedRMS
}

// Update advances the calibrator by one hop; a no-op outside
// Requested/Measuring. Returns true if the state changed this hop.
func (c *NoiseCalibrator) Update(sampleIndex uint64, rms float32, bands [NumBands]float32, chroma [NumChroma]float32) bool {
	switch c.state {
	case CalibrationRequested:
		if rms > c.maxAllowedRMS {
			return false
		}
		c.state = CalibrationMeasuring
		c.startSample = sampleIndex
		c.haveStartSample = true
		return true

	case CalibrationMeasuring:
		for i, v := range bands {
			c.bandSum[i] += v
		}
		for i, v := range chroma {
			c.chromaSum[i] += v
		}
		c.rmsSum += rms
		if rms > c.peakRMS {
			c.peakRMS = rms
		}
		c.samples++

		if c.peakRMS > c.maxAllowedRMS {
			c.state = CalibrationFailed
			return true
		}

		elapsedMs := float32(sampleIndex-c.startSample) * 1000.0 / float32(SampleRateHz)
		if elapsedMs >= c.durationMs {
			c.finish()
			return true
		}
		return false

	default:
		return false
	}
}

func (c *NoiseCalibrator) finish() {
	if c.samples == 0 {
		c.state = CalibrationFailed
		return
	}
	n := float32(c.samples)
	var result NoiseCalibrationResult
	for i := range result.BandFloors {
		result.BandFloors[i] = c.bandSum[i] / n * c.safetyMultiplier
	}
	for i := range result.ChromaFloors {
		result.ChromaFloors[i] = c.chromaSum[i] / n * c.safetyMultiplier
	}
	result.OverallRMS = c.rmsSum / n
	result.PeakRMS = c.peakRMS
	result.SampleCount = c.samples
	result.Valid = true

	c.result = result
	c.state = CalibrationComplete
}

// ApplyToTuning copies a completed calibration's band floors into t and
// enables per-band noise-floor gating (spec §4.11's apply_to_tuning).
// It is a no-op (returns false) unless the last result is Valid.
func (c *NoiseCalibrator) ApplyToTuning(t *TuningPipeline) bool {
	if !c.result.Valid {
		return false
	}
	t.PerBandNoiseFloors = c.result.BandFloors
	t.UsePerBandNoiseFloor = true
	t.Clamp()
	return true
}
