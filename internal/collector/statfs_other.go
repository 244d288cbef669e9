//go:build !linux

package collector

import "github.com/shirou/gopsutil/v3/disk"

// statUsage falls back to gopsutil where statfs has no fragment size.
func statUsage(path string) (total, free uint64, err error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, 0, err
	}
	return usage.Total, usage.Free, nil
}
