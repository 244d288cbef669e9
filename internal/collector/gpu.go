// GPU collector: samples the devices found by gpu.Detect at startup.
package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/gpu"
)

// GPUCollector collects per-device GPU utilization and temperature.
type GPUCollector struct {
	reader *gpu.Reader
	logger *zap.Logger
}

// NewGPUCollector wraps a reader built from a completed detection.
func NewGPUCollector(reader *gpu.Reader, logger *zap.Logger) *GPUCollector {
	return &GPUCollector{reader: reader, logger: logger}
}

// Name returns the collector identifier.
func (c *GPUCollector) Name() string { return NameGPU }

// Collect returns gpu.Stats. Vendor read errors are logged and the
// fallback readings returned, so the record keeps one entry per device.
func (c *GPUCollector) Collect(ctx context.Context) (interface{}, error) {
	stats, err := c.reader.Read(ctx)
	if err != nil {
		c.logger.Debug("GPU read failed, reporting fallback values",
			zap.String("vendor", string(c.reader.Info().Vendor)),
			zap.Error(err))
	}
	return stats, nil
}

// IsAvailable returns true: a host without a GPU still reports vendor "none".
func (c *GPUCollector) IsAvailable() bool { return true }
