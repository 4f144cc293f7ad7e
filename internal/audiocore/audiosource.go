package audiocore

import (
	"math"
	"sync/atomic"
)

// AudioSource yields fixed-size hops of mono PCM and reports capture errors
// without blocking (spec §4.1, §6). Implementations may block only inside
// CaptureHop, which must itself carry a bounded internal timeout.
type AudioSource interface {
	// Init configures the underlying hardware/stream. A non-nil *InitError
	// means the caller must not start an AudioTask against this source.
	Init() error

	// CaptureHop fills out with the next HopSize samples and reports the
	// outcome. On any result other than CaptureOK the contents of out are
	// unspecified; AudioCore.Run discards that hop and publishes no frame
	// for it (no zero-filled hop is processed in its place).
	CaptureHop(out *Hop) CaptureResult

	// SetMicGainDB requests a codec PGA gain in dB. Returns false if the
	// requested value isn't in the supported set or the source has no PGA.
	SetMicGainDB(db int8) bool

	// Stats returns a snapshot of cumulative capture statistics.
	Stats() CaptureStats

	// Close releases any resources acquired by Init.
	Close() error
}

// MicGainStepsDB is the set of codec PGA gains SetMicGainDB must restrict to
// (spec §4.1).
var MicGainStepsDB = [...]int8{0, 6, 12, 18, 24, 30, 36, 42}

func isValidMicGain(db int8) bool {
	for _, v := range MicGainStepsDB {
		if v == db {
			return true
		}
	}
	return false
}

// CaptureStats is a point-in-time snapshot of AudioSource capture health,
// exposed via the observability surface (spec §6).
type CaptureStats struct {
	HopsCaptured uint64
	DMATimeouts  uint64
	ReadErrors   uint64
	MaxReadUs    uint64
	AvgReadUs    uint64
	PeakSample   int16
}

// captureStatsAccum holds the atomically-updated counters backing
// CaptureStats, shared between the capture path and Stats() readers.
type captureStatsAccum struct {
	hopsCaptured atomic.Uint64
	dmaTimeouts  atomic.Uint64
	readErrors   atomic.Uint64
	maxReadUs    atomic.Uint64
	sumReadUs    atomic.Uint64
	peakSample   atomic.Int32
}

func (a *captureStatsAccum) recordHop(readUs uint64, peak int16) {
	a.hopsCaptured.Add(1)
	a.sumReadUs.Add(readUs)
	for {
		cur := a.maxReadUs.Load()
		if readUs <= cur || a.maxReadUs.CompareAndSwap(cur, readUs) {
			break
		}
	}
	for {
		cur := a.peakSample.Load()
		if int32(peak) <= cur || a.peakSample.CompareAndSwap(cur, int32(peak)) {
			break
		}
	}
}

func (a *captureStatsAccum) snapshot() CaptureStats {
	hops := a.hopsCaptured.Load()
	var avg uint64
	if hops > 0 {
		avg = a.sumReadUs.Load() / hops
	}
	return CaptureStats{
		HopsCaptured: hops,
		DMATimeouts:  a.dmaTimeouts.Load(),
		ReadErrors:   a.readErrors.Load(),
		MaxReadUs:    a.maxReadUs.Load(),
		AvgReadUs:    avg,
		PeakSample:   int16(a.peakSample.Load()),
	}
}

// peakAbs returns the largest absolute sample magnitude in the hop.
func peakAbs(h *Hop) int16 {
	var peak int16
	for _, s := range h {
		v := s
		if v < 0 {
			if v == math.MinInt16 {
				v = math.MaxInt16
			} else {
				v = -v
			}
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
