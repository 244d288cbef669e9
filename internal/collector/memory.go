// RAM usage collector: gathers total, available and used memory.
// Uses gopsutil, which parses MemTotal and MemAvailable from /proc/meminfo.
package collector

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vitalis-app/sysmon/internal/models"
)

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct {
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{virtualMemory: mem.VirtualMemoryWithContext}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return NameMemory }

// Collect returns a models.RAMInfo with figures in kB.
// Used memory is total minus available, which counts reclaimable cache as free.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := c.virtualMemory(ctx)
	if err != nil {
		return nil, err
	}
	if v.Total == 0 {
		return nil, errors.New("meminfo reports zero total memory")
	}

	total := v.Total / 1024
	available := v.Available / 1024
	var used uint64
	if available < total {
		used = total - available
	}

	return models.RAMInfo{
		Usage:     float64(used) * 100 / float64(total),
		Total:     total,
		Used:      used,
		Available: available,
	}, nil
}

// IsAvailable returns true: memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
