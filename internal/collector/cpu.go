// CPU usage collector: derives aggregate utilization from the cumulative
// counters on the first line of /proc/stat.
package collector

import (
	"context"
	"errors"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
)

// cpuCounters is one cumulative reading, in seconds of CPU time.
type cpuCounters struct {
	total float64
	idle  float64
}

// countersFrom folds a times reading into total and idle time.
// guest and guest_nice are already accounted inside user and nice.
func countersFrom(t cpu.TimesStat) cpuCounters {
	idle := t.Idle + t.Iowait
	busy := t.User + t.Nice + t.System + t.Irq + t.Softirq + t.Steal
	return cpuCounters{total: busy + idle, idle: idle}
}

// usagePercent computes utilization between two readings, clamped to [0, 100].
func usagePercent(prev, cur cpuCounters) float64 {
	diffTotal := cur.total - prev.total
	diffIdle := cur.idle - prev.idle
	if diffTotal <= 0 {
		return 0
	}
	usage := (diffTotal - diffIdle) * 100 / diffTotal
	switch {
	case usage < 0:
		return 0
	case usage > 100:
		return 100
	}
	return usage
}

// CPUCollector reports aggregate CPU usage as a percentage of the time
// elapsed since its previous Collect. The first call measures against
// boot.
type CPUCollector struct {
	times func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)

	mu   sync.Mutex
	prev cpuCounters
}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{times: cpu.TimesWithContext}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return NameCPU }

// Collect returns the usage as a float64 percentage. On error the previous
// reading is kept so the next successful call still spans a real interval.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	stats, err := c.times(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, errors.New("no aggregate cpu line in stat")
	}

	cur := countersFrom(stats[0])

	c.mu.Lock()
	defer c.mu.Unlock()
	usage := usagePercent(c.prev, cur)
	c.prev = cur
	return usage, nil
}

// IsAvailable returns true: /proc/stat is always present on Linux.
func (c *CPUCollector) IsAvailable() bool { return true }
