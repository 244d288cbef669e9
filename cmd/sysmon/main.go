// Package main is the entry point for sysmon, the host telemetry sampler.
// It resolves configuration, detects the GPU vendor, and streams one JSON
// sample per interval to stdout until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vitalis-app/sysmon/internal/collector"
	"github.com/vitalis-app/sysmon/internal/config"
	"github.com/vitalis-app/sysmon/internal/emitter"
	"github.com/vitalis-app/sysmon/internal/gpu"
	"github.com/vitalis-app/sysmon/internal/sampler"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// cobra prints the error to stderr.
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var printConfig bool

	rootCmd := &cobra.Command{
		Use:   "sysmon [mount ...]",
		Short: "Stream CPU, memory, disk and GPU samples as JSON lines",
		Long: `sysmon polls /proc, /sys and vendor GPU tools and writes one JSON
record per interval to stdout for a display process to consume.

Positional arguments are the mount points whose usage is reported
(default "/"). The argument "auto" expands to every local filesystem.

Examples:
  # Sample / and /home every 2 seconds
  sysmon / /home

  # Take a single sample and exit
  sysmon --count 1
`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(overridesFromFlags(cmd, args))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if printConfig {
				return config.Write(cfg, cmd.OutOrStdout())
			}
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.Duration("interval", 0, "Time between samples (default 2s)")
	flags.Duration("timeout", 0, "Upper bound on one collection pass (default 10s)")
	flags.Int("count", 0, "Stop after this many samples (0 runs until interrupted)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.String("nvidia-smi", "", "Path or name of the nvidia-smi binary")
	flags.BoolVar(&printConfig, "print-config", false, "Print the effective configuration as YAML and exit")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sysmon %s\n", version)
		},
	})

	return rootCmd
}

// overridesFromFlags collects only the flags the user actually set, so
// environment values are not clobbered by flag defaults.
func overridesFromFlags(cmd *cobra.Command, args []string) config.CLIOverrides {
	flags := cmd.Flags()
	cli := config.CLIOverrides{Mounts: args}

	if flags.Changed("interval") {
		v, _ := flags.GetDuration("interval")
		cli.Interval = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		cli.Timeout = &v
	}
	if flags.Changed("count") {
		v, _ := flags.GetInt("count")
		cli.Count = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		cli.LogLevel = &v
	}
	if flags.Changed("log-file") {
		v, _ := flags.GetString("log-file")
		cli.LogFile = &v
	}
	if flags.Changed("nvidia-smi") {
		v, _ := flags.GetString("nvidia-smi")
		cli.NvidiaSMI = &v
	}
	return cli
}

// run wires the collectors, sampler and emitter and blocks until the
// sampler stops.
func run(cfg *config.Config) error {
	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting sysmon",
		zap.String("version", version),
		zap.Duration("interval", cfg.Sampling.Interval.Duration),
		zap.Strings("mounts", cfg.Sampling.Mounts))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	mounts, err := collector.ResolveMounts(ctx, cfg.Sampling.Mounts, logger)
	if err != nil {
		logger.Error("Failed to resolve mount points", zap.Error(err))
		return err
	}

	gpuOpts := gpu.Options{
		SysRoot:        cfg.Host.SysRoot,
		NvidiaSMI:      cfg.GPU.NvidiaSMI,
		IntelGPUTop:    cfg.GPU.IntelGPUTop,
		CommandTimeout: cfg.GPU.CommandTimeout.Duration,
		Logger:         logger,
	}
	gpuInfo := gpu.Detect(ctx, gpuOpts)

	registry := collector.NewRegistry(logger)
	registry.Register(collector.NewCPUCollector())
	registry.Register(collector.NewCPUTempCollector(cfg.Host.SysRoot, logger))
	registry.Register(collector.NewMemoryCollector())
	registry.Register(collector.NewDiskCollector(mounts, logger))
	registry.Register(collector.NewGPUCollector(gpu.NewReader(gpuInfo, gpuOpts), logger))
	logger.Info("Collectors ready", zap.Strings("collectors", registry.Names()))

	out := emitter.New(os.Stdout, logger)
	s := sampler.New(registry, cfg, gpuInfo, mounts, logger)

	if err := s.Run(ctx, out.Emit); err != nil {
		logger.Error("Sampler stopped", zap.Error(err))
		return err
	}

	logger.Info("sysmon stopped", zap.Int("samples", out.Emitted()))
	return nil
}

// initLogger creates a zap logger based on the configuration.
// Console output goes to stderr because stdout carries the sample stream;
// a JSON log file is added when configured.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
