// Disk usage collector: reports the used percentage of each monitored
// mount point. Mount points are fixed at startup.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"
)

// AutoMounts is the mount argument that expands to every local filesystem.
const AutoMounts = "auto"

// DefaultMounts is monitored when no mount point is given.
var DefaultMounts = []string{"/"}

// pseudoFSTypes contains filesystem types that are excluded when mount
// points are discovered automatically. These are virtual/system filesystems
// and network/remote filesystems that don't represent local storage devices.
var pseudoFSTypes = map[string]bool{
	// Virtual / system filesystems
	"autofs":        true,
	"tmpfs":         true,
	"sysfs":         true,
	"proc":          true,
	"devtmpfs":      true,
	"devpts":        true,
	"cgroup":        true,
	"cgroup2":       true,
	"overlay":       true,
	"squashfs":      true,
	"fuse.snapfuse": true,
	"nsfs":          true,
	"pstore":        true,
	"debugfs":       true,
	"tracefs":       true,
	"securityfs":    true,
	"configfs":      true,
	"fusectl":       true,
	"mqueue":        true,
	"hugetlbfs":     true,
	"binfmt_misc":   true,
	"efivarfs":      true,
	"bpf":           true,
	"ramfs":         true,
	"rpc_pipefs":    true,

	// Network / remote filesystems
	"nfs":         true,
	"nfs4":        true,
	"cifs":        true,
	"smbfs":       true,
	"fuse.sshfs":  true,
	"fuse.rclone": true,
	"9p":          true,
	"afs":         true,
	"glusterfs":   true,
	"lustre":      true,
	"ceph":        true,
	"fuse.ceph":   true,
	"davfs2":      true,
}

// isSystemMount returns true for kernel-managed trees that never hold
// user data even when backed by a real filesystem type.
func isSystemMount(mount string) bool {
	systemPrefixes := []string{"/proc", "/sys", "/dev", "/snap"}
	for _, prefix := range systemPrefixes {
		if mount == prefix || strings.HasPrefix(mount, prefix+"/") {
			return true
		}
	}
	return false
}

// ResolveMounts expands the mount arguments. An empty list yields
// DefaultMounts; the AutoMounts argument is replaced by every local
// filesystem found by DiscoverMounts. Duplicates are dropped, first
// occurrence wins.
func ResolveMounts(ctx context.Context, args []string, logger *zap.Logger) ([]string, error) {
	if len(args) == 0 {
		return append([]string(nil), DefaultMounts...), nil
	}

	seen := make(map[string]bool, len(args))
	var mounts []string
	add := func(m string) {
		if !seen[m] {
			seen[m] = true
			mounts = append(mounts, m)
		}
	}

	for _, arg := range args {
		if arg != AutoMounts {
			add(arg)
			continue
		}
		discovered, err := DiscoverMounts(ctx, logger)
		if err != nil {
			return nil, fmt.Errorf("discovering mount points: %w", err)
		}
		for _, m := range discovered {
			add(m)
		}
	}
	return mounts, nil
}

// DiscoverMounts lists the mount points of local, non-pseudo filesystems.
func DiscoverMounts(ctx context.Context, logger *zap.Logger) ([]string, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	return filterPartitions(partitions, logger), nil
}

func filterPartitions(partitions []disk.PartitionStat, logger *zap.Logger) []string {
	var mounts []string
	for _, p := range partitions {
		if pseudoFSTypes[p.Fstype] {
			logger.Debug("Skipping pseudo/network filesystem",
				zap.String("mount", p.Mountpoint),
				zap.String("fstype", p.Fstype))
			continue
		}
		if isSystemMount(p.Mountpoint) {
			continue
		}
		mounts = append(mounts, p.Mountpoint)
	}
	return mounts
}

// DiskCollector collects disk usage metrics per mount point.
type DiskCollector struct {
	mounts []string
	usage  func(path string) (total, free uint64, err error)
	logger *zap.Logger
}

// NewDiskCollector creates a disk collector for the given mount points.
func NewDiskCollector(mounts []string, logger *zap.Logger) *DiskCollector {
	return &DiskCollector{
		mounts: append([]string(nil), mounts...),
		usage:  statUsage,
		logger: logger,
	}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return NameDisk }

// Mounts returns the monitored mount points.
func (c *DiskCollector) Mounts() []string {
	return append([]string(nil), c.mounts...)
}

// Collect returns a map of mount point -> used percentage. Used space is
// everything not available to unprivileged users, so root-reserved blocks
// count as used. Unreadable mounts report 0.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	result := make(map[string]float64, len(c.mounts))
	for _, mount := range c.mounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		total, free, err := c.usage(mount)
		if err != nil {
			c.logger.Debug("Disk usage unavailable",
				zap.String("mount", mount),
				zap.Error(err))
			result[mount] = 0
			continue
		}
		result[mount] = usedPercent(total, free)
	}
	return result, nil
}

// IsAvailable returns true: disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }

func usedPercent(total, free uint64) float64 {
	if total == 0 || free > total {
		return 0
	}
	return float64(total-free) / float64(total) * 100
}
