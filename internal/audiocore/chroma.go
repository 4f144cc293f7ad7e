package audiocore

const chromaOctaves = 4

// noteFreqsHz is the 4-octave x 12-pitch-class note frequency table
// (equal temperament, A4=440Hz), taken directly from the original
// firmware's chroma analyzer so the folded pitch classes line up with
// known note names.
var noteFreqsHz = [chromaOctaves * NumChroma]float32{
	// Octave 2
	65.41, 69.30, 73.42, 77.78, 82.41, 87.31, 92.50, 98.00, 103.83, 110.00, 116.54, 123.47,
	// Octave 3
	130.81, 138.59, 146.83, 155.56, 164.81, 174.61, 185.00, 196.00, 207.65, 220.00, 233.08, 246.94,
	// Octave 4
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23, 369.99, 392.00, 415.30, 440.00, 466.16, 493.88,
	// Octave 5
	523.25, 554.37, 587.33, 622.25, 659.25, 698.46, 739.99, 783.99, 830.61, 880.00, 932.33, 987.77,
}

// chromaNormFactor matches the uniform 1/250 normalization the original
// analyzer applied before folding; carried forward unchanged since
// 16kHz-vs-12.8kHz only changes which Goertzel bin centers land on, not
// the magnitude scale of a normalized Goertzel output.
const chromaNormFactor = 1.0 / 250.0

// chromaOctaveWeight is the per-octave contribution weight when folding
// 4 octaves into 12 pitch classes, matching the original "Sensory Bridge"
// aggregation.
const chromaOctaveWeight = 0.5

// ChromaAnalyzer computes the 12-pitch-class chromagram described in spec
// §4.6 by running 48 Goertzel bins (4 octaves x 12 notes) over a shared
// 512-sample window and folding each octave's bin into its pitch class.
// Grounded on original_source's ChromaAnalyzer.{h,cpp}. Unlike the
// original, the sample rate is an explicit constructor parameter rather
// than a hard-coded 12800Hz constant that silently mismatched the real
// 16000Hz capture stream (SPEC_FULL.md's supplemented feature 4).
type ChromaAnalyzer struct {
	window     slidingWindow
	coeffs     [chromaOctaves * NumChroma]float32
	linBuf     [WindowSize]int16
	lastOutput [NumChroma]float32
}

// NewChromaAnalyzer precomputes Goertzel coefficients for all 48 note
// frequencies against sampleRateHz.
func NewChromaAnalyzer(sampleRateHz uint32) *ChromaAnalyzer {
	c := &ChromaAnalyzer{}
	for i, f := range noteFreqsHz {
		c.coeffs[i] = goertzelCoeff(f, sampleRateHz, WindowSize)
	}
	return c
}

// Feed accumulates one hop into the analysis window.
func (c *ChromaAnalyzer) Feed(hop *Hop) { c.window.feed(hop) }

// Reset clears the analyzer's window and memory.
func (c *ChromaAnalyzer) Reset() {
	c.window.reset()
	c.lastOutput = [NumChroma]float32{}
}

// Analyze fills out with the 12 folded pitch-class magnitudes, clamped to
// [0,1], returning true only when the window has advanced since the last
// read; otherwise out is set to the previous output and false is
// returned.
func (c *ChromaAnalyzer) Analyze(out *[NumChroma]float32) bool {
	if !c.window.ready() {
		*out = c.lastOutput
		return false
	}
	c.window.linearized(c.linBuf[:])
	c.window.markRead()

	var raw [NumChroma]float32
	for octave := 0; octave < chromaOctaves; octave++ {
		for note := 0; note < NumChroma; note++ {
			idx := octave*NumChroma + note
			mag := goertzelMagnitude(c.linBuf[:], c.coeffs[idx])
			normalized := minf32(1.0, mag*chromaNormFactor)
			raw[note] += normalized * chromaOctaveWeight
		}
	}
	for i := range raw {
		out[i] = clamp01(raw[i])
	}
	c.lastOutput = *out
	return true
}
