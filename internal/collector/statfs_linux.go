//go:build linux

package collector

import "golang.org/x/sys/unix"

// statUsage returns the size and the space available to unprivileged users
// of the filesystem holding path, both in bytes of fragment size.
func statUsage(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	frsize := uint64(st.Frsize)
	return st.Blocks * frsize, st.Bavail * frsize, nil
}
