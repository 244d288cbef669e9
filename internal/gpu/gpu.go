// Package gpu detects the host's GPU vendor once at startup and reads
// per-device utilization and temperature on every sample.
//
// Detection order is NVIDIA (nvidia-smi on PATH), AMD (DRM cards exposing
// gpu_busy_percent), then Intel (intel_gpu_top on PATH). Only the first
// vendor found is reported.
package gpu

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/models"
	"github.com/vitalis-app/sysmon/internal/sysfs"
)

// Vendor identifies a GPU family.
type Vendor string

const (
	VendorNone   Vendor = "none"
	VendorNVIDIA Vendor = "nvidia"
	VendorAMD    Vendor = "amd"
	VendorIntel  Vendor = "intel"
)

// Default command names looked up on PATH.
const (
	DefaultNvidiaSMI   = "nvidia-smi"
	DefaultIntelGPUTop = "intel_gpu_top"
)

// defaultCommandTimeout bounds a single nvidia-smi invocation.
const defaultCommandTimeout = 5 * time.Second

// Runner abstracts external command execution so tests can fake vendor tools.
type Runner interface {
	// LookPath reports the resolved path of an executable, or an error if
	// it is not installed.
	LookPath(name string) (string, error)

	// Output runs the command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs real processes via os/exec.
type ExecRunner struct{}

// LookPath resolves name on PATH.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Output runs name with args and returns its stdout.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Options configures detection and reading.
type Options struct {
	// SysRoot is the sysfs mount point; defaults to /sys.
	SysRoot string

	// NvidiaSMI and IntelGPUTop override the vendor tool names.
	NvidiaSMI   string
	IntelGPUTop string

	// CommandTimeout bounds each vendor tool invocation.
	CommandTimeout time.Duration

	// Runner executes vendor tools; defaults to ExecRunner.
	Runner Runner

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.SysRoot == "" {
		o.SysRoot = sysfs.DefaultRoot
	}
	if o.NvidiaSMI == "" {
		o.NvidiaSMI = DefaultNvidiaSMI
	}
	if o.IntelGPUTop == "" {
		o.IntelGPUTop = DefaultIntelGPUTop
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = defaultCommandTimeout
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Info is the result of vendor detection. It does not change while the
// process runs.
type Info struct {
	Vendor Vendor
	Count  int

	// Cards lists the DRM card names backing an AMD detection, in index order.
	Cards []string
}

// Detected reports whether any GPU vendor was found.
func (i Info) Detected() bool {
	return i.Vendor != VendorNone && i.Vendor != ""
}

// Stats holds one sample of per-device readings. Usages and Temps are
// index-aligned and never nil.
type Stats struct {
	Usages []float64
	Temps  []int
}

// Fallback returns the readings reported when a sample could not be taken:
// zero usage and unknown temperature for every expected device.
func Fallback(info Info) Stats {
	n := info.Count
	if info.Vendor == VendorIntel {
		n = 1
	}
	if !info.Detected() || n < 0 {
		n = 0
	}
	stats := Stats{
		Usages: make([]float64, n),
		Temps:  make([]int, n),
	}
	for i := range stats.Temps {
		stats.Temps[i] = models.UnknownTemp
	}
	return stats
}

// Model merges detection info with a sample of readings into the wire record.
func Model(info Info, stats Stats) models.GPUInfo {
	vendor := info.Vendor
	if vendor == "" {
		vendor = VendorNone
	}
	usages, temps := stats.Usages, stats.Temps
	if usages == nil {
		usages = []float64{}
	}
	if temps == nil {
		temps = []int{}
	}
	return models.GPUInfo{
		Detected: info.Detected(),
		Vendor:   string(vendor),
		Count:    info.Count,
		Usages:   usages,
		Temps:    temps,
	}
}
