package audiocore

import "sync/atomic"

// seqlock is a single-writer, multi-reader-safe-in-practice (here:
// single reader) wrapper guaranteeing a reader never observes a torn
// write: the writer bumps an odd sequence, writes, then bumps to even;
// a reader retries if it observed an odd sequence, or if the sequence
// changed between its pre- and post-read (spec §5). Grounded on the
// classic seqlock pattern used for the cross-task Tuning/TuningContract
// mutation path.
type seqlock struct {
	seq atomic.Uint32
}

// BeginWrite marks the start of a write; callers must follow with
// EndWrite after mutating the guarded value.
func (s *seqlock) BeginWrite() {
	s.seq.Add(1) // now odd
}

// EndWrite marks the end of a write.
func (s *seqlock) EndWrite() {
	s.seq.Add(1) // now even
}

// BeginRead returns a sequence snapshot to pass to EndRead.
func (s *seqlock) BeginRead() uint32 {
	return s.seq.Load()
}

// EndRead reports whether the read starting at seq0 was consistent
// (sequence unchanged and even); callers should retry the read if it
// returns false.
func (s *seqlock) EndRead(seq0 uint32) bool {
	seq1 := s.seq.Load()
	return seq0 == seq1 && seq0%2 == 0
}

// SeqlockValue[T] guards a trivially-copyable T with a seqlock, giving a
// Write(T) / Read() T API for cross-task mutation without torn reads.
// Used for Tuning and TuningContract per spec §5: RenderTask writes,
// AudioTask reads once per hop.
type SeqlockValue[T any] struct {
	lock  seqlock
	value T
}

// NewSeqlockValue wraps an initial value.
func NewSeqlockValue[T any](initial T) *SeqlockValue[T] {
	return &SeqlockValue[T]{value: initial}
}

// Write replaces the guarded value.
func (s *SeqlockValue[T]) Write(v T) {
	s.lock.BeginWrite()
	s.value = v
	s.lock.EndWrite()
}

// Read returns a consistent copy of the guarded value, retrying on the
// rare reader/writer overlap (spec §7: "expected zero, max one retry in
// normal operation").
func (s *SeqlockValue[T]) Read() T {
	for {
		seq0 := s.lock.BeginRead()
		v := s.value
		if s.lock.EndRead(seq0) {
			return v
		}
	}
}
