// Package models defines the sample record emitted on every tick.
// These structures are serialized to JSON, one record per line, for the
// display process reading sysmon's stdout.
package models

import "time"

// UnknownTemp is reported for any temperature that could not be read.
const UnknownTemp = -1

// Sample is a single point-in-time reading of host utilization.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       CPUInfo   `json:"cpu"`
	RAM       RAMInfo   `json:"ram"`
	Disk      DiskInfo  `json:"disk"`
	GPU       GPUInfo   `json:"gpu"`
}

// CPUInfo holds aggregate CPU utilization and package temperature.
type CPUInfo struct {
	Usage float64 `json:"usage"`
	Temp  int     `json:"temp"`
}

// RAMInfo holds memory figures in kB, as /proc/meminfo reports them.
type RAMInfo struct {
	Usage     float64 `json:"usage"`
	Total     uint64  `json:"total"`
	Used      uint64  `json:"used"`
	Available uint64  `json:"available"`
}

// DiskInfo maps each monitored mount point to its used percentage.
type DiskInfo struct {
	Usage map[string]float64 `json:"usage"`
}

// GPUInfo describes the detected GPU vendor and per-device readings.
// Usages and Temps are index-aligned.
type GPUInfo struct {
	Detected bool      `json:"detected"`
	Vendor   string    `json:"vendor"`
	Count    int       `json:"count"`
	Usages   []float64 `json:"usages"`
	Temps    []int     `json:"temps"`
}
