package audiocore

import "sync/atomic"

// SnapshotBuffer[T] is the single-writer/single-reader lock-free handoff
// described in spec §4.10: publish() copies T into an internal slot and
// bumps a sequence counter after the copy is visible; read() returns the
// latest complete T by value, or the previous value if nothing new has
// been published. Built on the same seqlock primitive as
// Tuning/TuningContract (spec §5) since both need the identical "no
// torn reads, at most one retry" guarantee; here there is exactly one
// writer (AudioTask) and one reader (RenderTask).
type SnapshotBuffer[T any] struct {
	guard     SeqlockValue[T]
	available atomic.Uint32
}

// NewSnapshotBuffer allocates a SnapshotBuffer seeded with a zero-value
// T; all storage is static, matching spec §3's "no per-hop heap
// allocation" lifecycle requirement.
func NewSnapshotBuffer[T any]() *SnapshotBuffer[T] {
	var zero T
	return &SnapshotBuffer[T]{guard: *NewSeqlockValue(zero)}
}

// Publish copies v into the buffer, visible to Read after this call
// returns, and bumps the available sequence number.
func (b *SnapshotBuffer[T]) Publish(v T) {
	b.guard.Write(v)
	b.available.Add(1)
}

// Read returns the latest published value by value. If nothing has been
// published since construction, it returns the zero value of T.
func (b *SnapshotBuffer[T]) Read() T {
	return b.guard.Read()
}

// Available returns the number of values published so far.
func (b *SnapshotBuffer[T]) Available() uint32 {
	return b.available.Load()
}
