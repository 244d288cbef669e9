// Package config handles configuration from defaults, environment variables
// and command-line flags. There is no configuration file.
// Configuration precedence: CLI flags > environment variables > defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML marshaling
// to and from human-readable strings like "2s", "500ms", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all sampler configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	GPU      GPUConfig      `yaml:"gpu"`
	Host     HostConfig     `yaml:"host"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplingConfig holds the polling loop settings.
type SamplingConfig struct {
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
	// Count stops the loop after this many samples; 0 runs until signalled.
	Count  int      `yaml:"count"`
	Mounts []string `yaml:"mounts"`
}

// GPUConfig holds vendor tool settings.
type GPUConfig struct {
	NvidiaSMI      string   `yaml:"nvidia_smi"`
	IntelGPUTop    string   `yaml:"intel_gpu_top"`
	CommandTimeout Duration `yaml:"command_timeout"`
}

// HostConfig locates the kernel interfaces that are read.
type HostConfig struct {
	SysRoot string `yaml:"sys_root"`
}

// LoggingConfig holds logging settings. Logs always go to stderr; File adds
// a JSON log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Interval: Duration{2 * time.Second},
			Timeout:  Duration{10 * time.Second},
			Count:    0,
			Mounts:   []string{"/"},
		},
		GPU: GPUConfig{
			NvidiaSMI:      "nvidia-smi",
			IntelGPUTop:    "intel_gpu_top",
			CommandTimeout: Duration{5 * time.Second},
		},
		Host: HostConfig{
			SysRoot: "/sys",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Nil pointers and empty slices are treated as "not set" and skipped.
type CLIOverrides struct {
	Interval  *time.Duration
	Timeout   *time.Duration
	Count     *int
	LogLevel  *string
	LogFile   *string
	NvidiaSMI *string
	Mounts    []string
}

// Load builds the configuration with the full precedence chain:
// CLI flags > env vars > defaults.
func Load(cli CLIOverrides) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.Interval != nil {
		cfg.Sampling.Interval.Duration = *cli.Interval
	}
	if cli.Timeout != nil {
		cfg.Sampling.Timeout.Duration = *cli.Timeout
	}
	if cli.Count != nil {
		cfg.Sampling.Count = *cli.Count
	}
	if cli.LogLevel != nil {
		cfg.Logging.Level = *cli.LogLevel
	}
	if cli.LogFile != nil {
		cfg.Logging.File = *cli.LogFile
	}
	if cli.NvidiaSMI != nil {
		cfg.GPU.NvidiaSMI = *cli.NvidiaSMI
	}
	if len(cli.Mounts) > 0 {
		cfg.Sampling.Mounts = append([]string(nil), cli.Mounts...)
	}

	return cfg, nil
}

// Write serializes the config as YAML, for --print-config.
func Write(cfg *Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return enc.Close()
}

// applyEnvOverrides applies SYSMON_* environment variables. Malformed
// numeric values are reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs error

	if v := os.Getenv("SYSMON_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("SYSMON_INTERVAL: %w", err))
		} else {
			cfg.Sampling.Interval.Duration = d
		}
	}
	if v := os.Getenv("SYSMON_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("SYSMON_TIMEOUT: %w", err))
		} else {
			cfg.Sampling.Timeout.Duration = d
		}
	}
	if v := os.Getenv("SYSMON_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("SYSMON_COUNT: %w", err))
		} else {
			cfg.Sampling.Count = n
		}
	}
	if level := os.Getenv("SYSMON_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if file := os.Getenv("SYSMON_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
	if smi := os.Getenv("SYSMON_NVIDIA_SMI"); smi != "" {
		cfg.GPU.NvidiaSMI = smi
	}
	if root := os.Getenv("SYSMON_SYS_ROOT"); root != "" {
		cfg.Host.SysRoot = root
	}

	return errs
}

// Validate checks that the configuration can drive the sampling loop.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs error
	if c.Sampling.Interval.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("interval must be positive (got: %s)", c.Sampling.Interval.Duration))
	}
	if c.Sampling.Timeout.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("timeout must be positive (got: %s)", c.Sampling.Timeout.Duration))
	}
	if c.Sampling.Count < 0 {
		errs = multierr.Append(errs, fmt.Errorf("count must not be negative (got: %d)", c.Sampling.Count))
	}
	if len(c.Sampling.Mounts) == 0 {
		errs = multierr.Append(errs, errors.New("at least one mount point is required"))
	}
	if c.GPU.CommandTimeout.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("gpu command timeout must be positive (got: %s)", c.GPU.CommandTimeout.Duration))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errs
}
