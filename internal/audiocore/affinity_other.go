//go:build !linux

package audiocore

// pinCurrentThread is a no-op on platforms without a CPU-affinity syscall
// exposed through x/sys/unix (e.g. darwin, windows). AudioTask still runs
// correctly; it just loses the pinning hint.
func pinCurrentThread(cpu int) error { return nil }
