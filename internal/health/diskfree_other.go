//go:build !darwin && !linux

package health

// freeBytes is unavailable on this platform.
func freeBytes(string) (uint64, bool) {
	return 0, false
}
