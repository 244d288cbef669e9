// Package sampler implements the tick-based polling loop. On every tick it
// runs all collectors, assembles a models.Sample with documented defaults
// for any reading that failed, and hands it to an emit callback. The
// sampler does NOT write output directly.
package sampler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/collector"
	"github.com/vitalis-app/sysmon/internal/config"
	"github.com/vitalis-app/sysmon/internal/gpu"
	"github.com/vitalis-app/sysmon/internal/models"
)

// EmitFunc receives each assembled sample. Returning an error stops the loop.
type EmitFunc func(models.Sample) error

// Sampler manages periodic collection.
type Sampler struct {
	registry *collector.Registry
	cfg      *config.Config
	gpuInfo  gpu.Info
	mounts   []string
	logger   *zap.Logger

	now func() time.Time
}

// New creates a Sampler. gpuInfo and mounts describe the host as resolved
// at startup and are used to fill defaults for failed readings.
func New(registry *collector.Registry, cfg *config.Config, gpuInfo gpu.Info, mounts []string, logger *zap.Logger) *Sampler {
	return &Sampler{
		registry: registry,
		cfg:      cfg,
		gpuInfo:  gpuInfo,
		mounts:   append([]string(nil), mounts...),
		logger:   logger,
		now:      time.Now,
	}
}

// Run collects immediately, then once per interval, until the context is
// cancelled, the configured sample count is reached, or emit fails.
// Cancellation is a clean stop and returns nil.
func (s *Sampler) Run(ctx context.Context, emit EmitFunc) error {
	ticker := time.NewTicker(s.cfg.Sampling.Interval.Duration)
	defer ticker.Stop()

	emitted := 0
	for {
		sample, ok := s.collect(ctx)
		if !ok {
			return nil
		}
		if err := emit(sample); err != nil {
			return fmt.Errorf("emitting sample: %w", err)
		}
		emitted++

		if limit := s.cfg.Sampling.Count; limit > 0 && emitted >= limit {
			s.logger.Info("Sample count reached", zap.Int("count", emitted))
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// collect runs all collectors with a timeout and assembles a sample.
// It reports false if the context was cancelled while collecting.
func (s *Sampler) collect(ctx context.Context) (models.Sample, bool) {
	collectCtx, cancel := context.WithTimeout(ctx, s.cfg.Sampling.Timeout.Duration)
	defer cancel()

	results := s.registry.CollectAll(collectCtx)
	if ctx.Err() != nil {
		return models.Sample{}, false
	}

	sample := s.assembleSample(results)
	s.logger.Debug("Collected sample",
		zap.Int("readings", len(results)),
		zap.Time("timestamp", sample.Timestamp))
	return sample, true
}

// assembleSample maps collector results into a Sample, substituting the
// default for every reading that is missing or of an unexpected type.
func (s *Sampler) assembleSample(results map[string]interface{}) models.Sample {
	sample := models.Sample{
		Timestamp: s.now().UTC(),
		CPU:       models.CPUInfo{Usage: 0, Temp: models.UnknownTemp},
		Disk:      models.DiskInfo{Usage: s.defaultDiskUsage()},
	}

	// CPU
	if data, ok := results[collector.NameCPU]; ok {
		if usage, ok := data.(float64); ok {
			sample.CPU.Usage = usage
		}
	}
	if data, ok := results[collector.NameCPUTemp]; ok {
		if temp, ok := data.(int); ok {
			sample.CPU.Temp = temp
		}
	}

	// Memory
	if data, ok := results[collector.NameMemory]; ok {
		if ram, ok := data.(models.RAMInfo); ok {
			sample.RAM = ram
		}
	}

	// Disk
	if data, ok := results[collector.NameDisk]; ok {
		if usage, ok := data.(map[string]float64); ok {
			for mount, pct := range usage {
				sample.Disk.Usage[mount] = pct
			}
		}
	}

	// GPU
	stats := gpu.Fallback(s.gpuInfo)
	if data, ok := results[collector.NameGPU]; ok {
		if read, ok := data.(gpu.Stats); ok {
			stats = read
		}
	}
	sample.GPU = gpu.Model(s.gpuInfo, stats)

	return sample
}

func (s *Sampler) defaultDiskUsage() map[string]float64 {
	usage := make(map[string]float64, len(s.mounts))
	for _, mount := range s.mounts {
		usage[mount] = 0
	}
	return usage
}
