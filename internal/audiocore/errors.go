package audiocore

import "errors"

// InitError enumerates fatal AudioSource.Init failures (spec §4.1). The
// AudioTask is never started when Init returns one of these.
type InitError struct {
	Kind InitErrorKind
	Err  error
}

// InitErrorKind classifies a fatal AudioSource initialization failure.
type InitErrorKind int

const (
	InitErrorCodec InitErrorKind = iota
	InitErrorBus
	InitErrorPin
)

func (k InitErrorKind) String() string {
	switch k {
	case InitErrorCodec:
		return "codec"
	case InitErrorBus:
		return "bus"
	case InitErrorPin:
		return "pin"
	default:
		return "unknown"
	}
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return "audiosource init failed (" + e.Kind.String() + "): " + e.Err.Error()
	}
	return "audiosource init failed (" + e.Kind.String() + ")"
}

func (e *InitError) Unwrap() error { return e.Err }

// CaptureResult classifies the outcome of a single capture_hop call.
type CaptureResult int

const (
	CaptureOK CaptureResult = iota
	CaptureDMATimeout
	CaptureReadError
	CaptureNotInitialized
)

func (r CaptureResult) String() string {
	switch r {
	case CaptureOK:
		return "ok"
	case CaptureDMATimeout:
		return "dma_timeout"
	case CaptureReadError:
		return "read_error"
	case CaptureNotInitialized:
		return "not_initialized"
	default:
		return "unknown"
	}
}

// StoreError is returned by a ConfigStore.Store failure.
type StoreError struct {
	Namespace string
	Key       string
	Err       error
}

func (e *StoreError) Error() string {
	return "config store: " + e.Namespace + "/" + e.Key + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrNotFound is a sentinel for an absent namespace/key. FileConfigStore
// does not return it: its Load reports a missing key as ok=false with a
// nil error.
var ErrNotFound = errors.New("audiocore: config key not found")
