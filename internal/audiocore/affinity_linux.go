//go:build linux

package audiocore

import "golang.org/x/sys/unix"

// pinCurrentThread pins the calling OS thread to the given CPU, per spec
// §5's "two parallel OS threads... pinned to separate cores". Callers must
// have already called runtime.LockOSThread so the goroutine stays put.
func pinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
