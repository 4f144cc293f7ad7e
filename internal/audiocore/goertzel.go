package audiocore

import "math"

// BandFrequenciesHz are the 8 perceptual Goertzel band center frequencies
// (spec §4.5).
var BandFrequenciesHz = [NumBands]float32{60, 120, 250, 500, 1000, 2000, 4000, 7800}

// goertzelCoeff precomputes 2*cos(2*pi*k/N) for a target frequency against
// a window of N samples at the given sample rate.
func goertzelCoeff(freqHz float32, sampleRateHz uint32, windowSize int) float32 {
	k := freqHz * float32(windowSize) / float32(sampleRateHz)
	omega := 2 * math.Pi * float64(k) / float64(windowSize)
	return float32(2 * math.Cos(omega))
}

// goertzelMagnitude runs the classic single-bin Goertzel recurrence over
// window and returns the raw (unnormalized) magnitude.
func goertzelMagnitude(window []int16, coeff float32) float32 {
	var s1, s2 float32
	for _, raw := range window {
		x := float32(raw) / 32768.0
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	mag2 := s1*s1 + s2*s2 - coeff*s1*s2
	if mag2 < 0 {
		mag2 = 0
	}
	return float32(math.Sqrt(float64(mag2)))
}

// slidingWindow is a circular buffer of WindowSize samples shared by the
// 8-band and chroma analyzers, filled one hop (HopSize samples) at a time.
// analyze() is only meaningful (and ready() only true) once the window has
// filled, and from then on twice per full window traversal, matching spec
// §4.5's "twice per window fill" cadence.
type slidingWindow struct {
	buf       [WindowSize]int16
	writeIdx  int
	hopsFed   int
	lastReadAt int
}

func (w *slidingWindow) reset() {
	for i := range w.buf {
		w.buf[i] = 0
	}
	w.writeIdx = 0
	w.hopsFed = 0
	w.lastReadAt = 0
}

// feed writes one hop into the circular window.
func (w *slidingWindow) feed(hop *Hop) {
	for _, s := range hop {
		w.buf[w.writeIdx] = s
		w.writeIdx = (w.writeIdx + 1) % WindowSize
	}
	w.hopsFed++
}

// ready reports whether the window has filled at least once and enough
// new hops have been fed since the last analyze() to produce a fresh
// result (every hop after the first fill, since a hop is half a window).
func (w *slidingWindow) ready() bool {
	return w.hopsFed >= WindowSize/HopSize && w.hopsFed-w.lastReadAt >= WindowSize/HopSize/2
}

func (w *slidingWindow) markRead() { w.lastReadAt = w.hopsFed }

// linearized returns the window contents in chronological order (oldest
// sample first), used by the Goertzel recurrences which don't care about
// phase alignment to the write pointer but do want a contiguous slice.
func (w *slidingWindow) linearized(out []int16) {
	n := len(w.buf)
	idx := w.writeIdx
	for i := 0; i < n; i++ {
		out[i] = w.buf[idx]
		idx = (idx + 1) % n
	}
}

// GoertzelAnalyzer computes the 8 perceptual band magnitudes described in
// spec §4.5 over a shared 512-sample sliding window.
type GoertzelAnalyzer struct {
	window      slidingWindow
	coeffs      [NumBands]float32
	linBuf      [WindowSize]int16
	sampleRate  uint32
	lastOutput  [NumBands]float32
}

// NewGoertzelAnalyzer precomputes per-band coefficients for the given
// capture sample rate. original_source's ChromaAnalyzer hard-coded a
// 12800Hz rate that didn't match the real 16000Hz capture stream; taking
// the rate as a constructor parameter here closes that class of bug.
func NewGoertzelAnalyzer(sampleRateHz uint32) *GoertzelAnalyzer {
	g := &GoertzelAnalyzer{sampleRate: sampleRateHz}
	for i, f := range BandFrequenciesHz {
		g.coeffs[i] = goertzelCoeff(f, sampleRateHz, WindowSize)
	}
	return g
}

// Feed accumulates one hop into the analysis window.
func (g *GoertzelAnalyzer) Feed(hop *Hop) { g.window.feed(hop) }

// Reset clears the analyzer's window and memory.
func (g *GoertzelAnalyzer) Reset() {
	g.window.reset()
	g.lastOutput = [NumBands]float32{}
}

// Analyze fills out with fresh per-band magnitudes (normalized and
// per-band-gained, clamped to [0,1]) and returns true only when the window
// has advanced enough to produce a fresh result; otherwise out is set to
// the previous output and false is returned, per spec §4.5's contract.
func (g *GoertzelAnalyzer) Analyze(out *[NumBands]float32, t *TuningPipeline) bool {
	if !g.window.ready() {
		*out = g.lastOutput
		return false
	}
	g.window.linearized(g.linBuf[:])
	g.window.markRead()

	for i, coeff := range g.coeffs {
		mag := goertzelMagnitude(g.linBuf[:], coeff)
		mag *= windowNormFactor
		mag *= t.PerBandGains[i]
		out[i] = clamp01(mag)
	}
	g.lastOutput = *out
	return true
}

// windowNormFactor converts raw Goertzel magnitude (accumulated over
// WindowSize samples of a [-1,1]-normalized signal) into roughly [0,1]
// range before per-band gain is applied.
const windowNormFactor = 2.0 / WindowSize * 64

// Bin64FrequencyHz returns the log-spaced center frequency for bin i of
// the 64-bin sub-bass/novelty analyzer, spanning 110Hz-4186Hz (spec §4.5).
func Bin64FrequencyHz(i int) float32 {
	const lo = 110.0
	const hi = 4186.0
	t := float64(i) / float64(NumBins64-1)
	return float32(lo * math.Pow(hi/lo, t))
}

// Goertzel64Analyzer is the parallel 64-bin variant used for sub-bass
// detail and tempo novelty, with an adaptive max-follower normalizer
// (spec §4.5).
type Goertzel64Analyzer struct {
	window     slidingWindow
	coeffs     [NumBins64]float32
	linBuf     [WindowSize]int16
	lastOutput [NumBins64]float32
	follower   float32
}

// NewGoertzel64Analyzer precomputes coefficients for the log-spaced bins.
func NewGoertzel64Analyzer(sampleRateHz uint32) *Goertzel64Analyzer {
	g := &Goertzel64Analyzer{follower: 1.0}
	for i := 0; i < NumBins64; i++ {
		g.coeffs[i] = goertzelCoeff(Bin64FrequencyHz(i), sampleRateHz, WindowSize)
	}
	return g
}

// Feed accumulates one hop into the analysis window.
func (g *Goertzel64Analyzer) Feed(hop *Hop) { g.window.feed(hop) }

// Reset clears analyzer state, including the adaptive follower.
func (g *Goertzel64Analyzer) Reset() {
	g.window.reset()
	g.lastOutput = [NumBins64]float32{}
	g.follower = 1.0
}

// Analyze fills out with adaptively-normalized bin magnitudes, returning
// true only on hops where the window produced a fresh result.
func (g *Goertzel64Analyzer) Analyze(out *[NumBins64]float32, t *TuningPipeline) bool {
	if !g.window.ready() {
		*out = g.lastOutput
		return false
	}
	g.window.linearized(g.linBuf[:])
	g.window.markRead()

	var raw [NumBins64]float32
	var maxBin float32
	for i, coeff := range g.coeffs {
		raw[i] = goertzelMagnitude(g.linBuf[:], coeff) * windowNormFactor * t.Bins64AdaptiveScale
		if raw[i] > maxBin {
			maxBin = raw[i]
		}
	}

	// Adaptive max follower (spec §4.5): decays each frame, tracks the
	// peak with asymmetric rise/fall, floored.
	decayed := g.follower * t.Bins64AdaptiveDecay
	var tracked float32
	if maxBin > g.follower {
		tracked = lerp(g.follower, maxBin, t.Bins64AdaptiveRise)
	} else {
		tracked = lerp(g.follower, maxBin, t.Bins64AdaptiveFall)
	}
	g.follower = maxf32(maxf32(decayed, t.Bins64AdaptiveFloor), tracked)

	for i := range raw {
		out[i] = clamp01(raw[i] / g.follower)
	}
	g.lastOutput = *out
	return true
}
