// Package collector defines the Collector interface and the host readers
// sampled on every tick: CPU usage, CPU temperature, memory, disk and GPU.
package collector

import "context"

// Collector is the interface that all metric collectors must implement.
// Each collector gathers a specific part of the sample.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the metric data and returns it.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current host.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}

// Collector names, used as keys in Registry.CollectAll results.
const (
	NameCPU     = "cpu"
	NameCPUTemp = "cpu_temp"
	NameMemory  = "memory"
	NameDisk    = "disk"
	NameGPU     = "gpu"
)
