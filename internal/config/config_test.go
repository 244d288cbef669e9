package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

func TestLoad_CLIOverridesEverything(t *testing.T) {
	t.Setenv("SYSMON_INTERVAL", "5s")
	t.Setenv("SYSMON_LOG_LEVEL", "debug")
	interval := 750 * time.Millisecond
	level := "error"
	cli := CLIOverrides{Interval: &interval, LogLevel: &level, Mounts: []string{"/home"}}

	cfg, err := Load(cli)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Interval.Duration != interval {
		t.Errorf("Interval = %v, want CLI override", cfg.Sampling.Interval.Duration)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want CLI override", cfg.Logging.Level)
	}
	if len(cfg.Sampling.Mounts) != 1 || cfg.Sampling.Mounts[0] != "/home" {
		t.Errorf("Mounts = %v, want [/home]", cfg.Sampling.Mounts)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SYSMON_INTERVAL", "5s")
	t.Setenv("SYSMON_COUNT", "3")
	t.Setenv("SYSMON_NVIDIA_SMI", "/opt/nvidia/bin/nvidia-smi")
	t.Setenv("SYSMON_SYS_ROOT", "/host/sys")

	cfg, err := Load(CLIOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Interval.Duration != 5*time.Second {
		t.Errorf("Interval = %v, want env value", cfg.Sampling.Interval.Duration)
	}
	if cfg.Sampling.Count != 3 {
		t.Errorf("Count = %d, want 3", cfg.Sampling.Count)
	}
	if cfg.GPU.NvidiaSMI != "/opt/nvidia/bin/nvidia-smi" {
		t.Errorf("NvidiaSMI = %q, want env value", cfg.GPU.NvidiaSMI)
	}
	if cfg.Host.SysRoot != "/host/sys" {
		t.Errorf("SysRoot = %q, want env value", cfg.Host.SysRoot)
	}
}

func TestLoad_MalformedEnv(t *testing.T) {
	t.Setenv("SYSMON_INTERVAL", "soon")
	t.Setenv("SYSMON_COUNT", "many")

	_, err := Load(CLIOverrides{})
	if err == nil {
		t.Fatal("expected error for malformed env values")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("got %d errors, want 2: %v", n, err)
	}
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := Load(CLIOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Interval.Duration.Seconds() != 2 {
		t.Errorf("Interval = %v, want 2s default", cfg.Sampling.Interval.Duration)
	}
	if len(cfg.Sampling.Mounts) != 1 || cfg.Sampling.Mounts[0] != "/" {
		t.Errorf("Mounts = %v, want [/]", cfg.Sampling.Mounts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero interval", func(c *Config) { c.Sampling.Interval.Duration = 0 }, "interval must be positive"},
		{"negative count", func(c *Config) { c.Sampling.Count = -1 }, "count must not be negative"},
		{"no mounts", func(c *Config) { c.Sampling.Mounts = nil }, "mount point"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "unknown log level"},
		{"zero timeout", func(c *Config) { c.Sampling.Timeout.Duration = 0 }, "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sampling.Interval.Duration = 1500 * time.Millisecond

	var buf bytes.Buffer
	if err := Write(cfg, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "interval: 1.5s") {
		t.Errorf("expected human-readable duration in output:\n%s", buf.String())
	}

	var decoded Config
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Sampling.Interval.Duration != cfg.Sampling.Interval.Duration {
		t.Errorf("decoded interval = %v, want %v", decoded.Sampling.Interval.Duration, cfg.Sampling.Interval.Duration)
	}
}
