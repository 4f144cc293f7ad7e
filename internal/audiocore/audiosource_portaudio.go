package audiocore

import (
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource is a concrete AudioSource backed by the default system
// microphone via PortAudio. It replaces the teacher's cgo ALSA/OSS ioctl
// loop (audio.go) with the portable portaudio binding, polling a single
// mono input stream one hop at a time.
//
// Only one PortAudioSource may be Init'd per process at a time, matching
// PortAudio's own global-state constraints.
type PortAudioSource struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	buf      []int16
	stats    captureStatsAccum
	gainDB   int8
	dmaLimit time.Duration
}

// NewPortAudioSource constructs an unopened source. Init must be called
// before use.
func NewPortAudioSource() *PortAudioSource {
	return &PortAudioSource{
		buf:      make([]int16, HopSize),
		dmaLimit: 2 * time.Duration(HopSize) * time.Second / SampleRateHz,
	}
}

// Init implements AudioSource.
func (p *PortAudioSource) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return &InitError{Kind: InitErrorBus, Err: err}
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRateHz), HopSize, p.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return &InitError{Kind: InitErrorCodec, Err: err}
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return &InitError{Kind: InitErrorPin, Err: err}
	}

	p.mu.Lock()
	p.stream = stream
	p.mu.Unlock()
	return nil
}

// CaptureHop implements AudioSource. It blocks for at most the 2x-hop-
// duration DMA timeout budget (spec §4.1); portaudio.Stream.Read itself
// blocks until a full buffer is available, so the bound is enforced by
// racing it against a timer on a helper goroutine.
func (p *PortAudioSource) CaptureHop(out *Hop) CaptureResult {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()
	if stream == nil {
		return CaptureNotInitialized
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- stream.Read() }()

	select {
	case err := <-done:
		if err != nil {
			p.stats.readErrors.Add(1)
			return CaptureReadError
		}
	case <-time.After(p.dmaLimit):
		p.stats.dmaTimeouts.Add(1)
		return CaptureDMATimeout
	}

	copy(out[:], p.buf)
	p.stats.recordHop(uint64(time.Since(start).Microseconds()), peakAbs(out))
	return CaptureOK
}

// SetMicGainDB implements AudioSource. PortAudio has no portable PGA
// control; this records the requested value for bookkeeping and reports
// success only for the validated gain steps, matching the spec's
// restricted-set contract without claiming hardware it doesn't have.
func (p *PortAudioSource) SetMicGainDB(db int8) bool {
	if !isValidMicGain(db) {
		return false
	}
	p.gainDB = db
	return true
}

// Stats implements AudioSource.
func (p *PortAudioSource) Stats() CaptureStats { return p.stats.snapshot() }

// Close implements AudioSource.
func (p *PortAudioSource) Close() error {
	p.mu.Lock()
	stream := p.stream
	p.stream = nil
	p.mu.Unlock()

	if stream == nil {
		return nil
	}
	if err := stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
