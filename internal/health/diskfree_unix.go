//go:build darwin || linux

package health

import "golang.org/x/sys/unix"

// freeBytes returns the free disk space on the filesystem containing path.
func freeBytes(path string) (uint64, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Bavail) * uint64(st.Bsize), true
}
