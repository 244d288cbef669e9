package sampler

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/vitalis-app/sysmon/internal/collector"
	"github.com/vitalis-app/sysmon/internal/config"
	"github.com/vitalis-app/sysmon/internal/gpu"
	"github.com/vitalis-app/sysmon/internal/models"
)

// stubCollector returns a fixed value or error.
type stubCollector struct {
	name string
	data interface{}
	err  error
}

func (c *stubCollector) Name() string { return c.name }

func (c *stubCollector) Collect(context.Context) (interface{}, error) {
	return c.data, c.err
}

func (c *stubCollector) IsAvailable() bool { return true }

func testConfig(count int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sampling.Interval.Duration = 5 * time.Millisecond
	cfg.Sampling.Count = count
	return cfg
}

func TestRun_StopsAfterCount(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := collector.NewRegistry(logger)
	registry.Register(&stubCollector{name: collector.NameCPU, data: 42.0})

	s := New(registry, testConfig(3), gpu.Info{Vendor: gpu.VendorNone}, []string{"/"}, logger)

	var samples []models.Sample
	err := s.Run(context.Background(), func(sample models.Sample) error {
		samples = append(samples, sample)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	for _, sample := range samples {
		if sample.CPU.Usage != 42 {
			t.Errorf("CPU.Usage = %v, want 42", sample.CPU.Usage)
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := collector.NewRegistry(logger)
	s := New(registry, testConfig(0), gpu.Info{Vendor: gpu.VendorNone}, []string{"/"}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := s.Run(ctx, func(models.Sample) error {
		count++
		if count == 2 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("cancellation should be a clean stop, got %v", err)
	}
	if count != 2 {
		t.Errorf("emitted %d samples, want 2", count)
	}
}

func TestRun_EmitErrorStops(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := collector.NewRegistry(logger)
	s := New(registry, testConfig(0), gpu.Info{Vendor: gpu.VendorNone}, []string{"/"}, logger)

	broken := errors.New("broken pipe")
	err := s.Run(context.Background(), func(models.Sample) error { return broken })
	if !errors.Is(err, broken) {
		t.Errorf("Run error = %v, want wrapped %v", err, broken)
	}
}

func TestAssembleSample_AllReadings(t *testing.T) {
	logger := zaptest.NewLogger(t)
	info := gpu.Info{Vendor: gpu.VendorNVIDIA, Count: 1}
	s := New(collector.NewRegistry(logger), testConfig(1), info, []string{"/", "/home"}, logger)
	fixed := time.Date(2026, 10, 16, 8, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	s.now = func() time.Time { return fixed }

	ram := models.RAMInfo{Usage: 25, Total: 400, Used: 100, Available: 300}
	sample := s.assembleSample(map[string]interface{}{
		collector.NameCPU:     12.5,
		collector.NameCPUTemp: 55,
		collector.NameMemory:  ram,
		collector.NameDisk:    map[string]float64{"/": 70, "/home": 10},
		collector.NameGPU:     gpu.Stats{Usages: []float64{99}, Temps: []int{80}},
	})

	if !sample.Timestamp.Equal(fixed) || sample.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want %v in UTC", sample.Timestamp, fixed)
	}
	if sample.CPU != (models.CPUInfo{Usage: 12.5, Temp: 55}) {
		t.Errorf("CPU = %+v", sample.CPU)
	}
	if sample.RAM != ram {
		t.Errorf("RAM = %+v, want %+v", sample.RAM, ram)
	}
	if !reflect.DeepEqual(sample.Disk.Usage, map[string]float64{"/": 70, "/home": 10}) {
		t.Errorf("Disk = %v", sample.Disk.Usage)
	}
	want := models.GPUInfo{Detected: true, Vendor: "nvidia", Count: 1, Usages: []float64{99}, Temps: []int{80}}
	if !reflect.DeepEqual(sample.GPU, want) {
		t.Errorf("GPU = %+v, want %+v", sample.GPU, want)
	}
}

func TestAssembleSample_DefaultsForFailedReadings(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := collector.NewRegistry(logger)
	registry.Register(&stubCollector{name: collector.NameCPU, err: errors.New("no /proc")})
	registry.Register(&stubCollector{name: collector.NameMemory, err: errors.New("no meminfo")})

	info := gpu.Info{Vendor: gpu.VendorAMD, Count: 2, Cards: []string{"card0", "card1"}}
	s := New(registry, testConfig(1), info, []string{"/", "/data"}, logger)

	sample, ok := s.collect(context.Background())
	if !ok {
		t.Fatal("collect reported cancellation")
	}

	if sample.CPU != (models.CPUInfo{Usage: 0, Temp: models.UnknownTemp}) {
		t.Errorf("CPU = %+v, want zero usage and unknown temp", sample.CPU)
	}
	if sample.RAM != (models.RAMInfo{}) {
		t.Errorf("RAM = %+v, want zeros", sample.RAM)
	}
	if !reflect.DeepEqual(sample.Disk.Usage, map[string]float64{"/": 0, "/data": 0}) {
		t.Errorf("Disk = %v, want zero per mount", sample.Disk.Usage)
	}
	if !reflect.DeepEqual(sample.GPU.Usages, []float64{0, 0}) || !reflect.DeepEqual(sample.GPU.Temps, []int{-1, -1}) {
		t.Errorf("GPU = %+v, want fallback per device", sample.GPU)
	}
	if !sample.GPU.Detected || sample.GPU.Vendor != "amd" || sample.GPU.Count != 2 {
		t.Errorf("GPU detection info lost: %+v", sample.GPU)
	}
}

// hangingCollector ignores its context and sleeps well past any timeout.
type hangingCollector struct {
	name  string
	sleep time.Duration
}

func (c *hangingCollector) Name() string { return c.name }

func (c *hangingCollector) Collect(context.Context) (interface{}, error) {
	time.Sleep(c.sleep)
	return map[string]float64{"/": 50}, nil
}

func (c *hangingCollector) IsAvailable() bool { return true }

func TestRun_TimeoutBoundsHungCollector(t *testing.T) {
	// Nop logger: the abandoned collector finishes after the test returns.
	registry := collector.NewRegistry(zap.NewNop())
	registry.Register(&stubCollector{name: collector.NameCPU, data: 12.5})
	registry.Register(&hangingCollector{name: collector.NameDisk, sleep: 2 * time.Second})

	cfg := testConfig(1)
	cfg.Sampling.Timeout.Duration = 100 * time.Millisecond
	s := New(registry, cfg, gpu.Info{Vendor: gpu.VendorNone}, []string{"/"}, zaptest.NewLogger(t))

	var samples []models.Sample
	start := time.Now()
	err := s.Run(context.Background(), func(sample models.Sample) error {
		samples = append(samples, sample)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("one sample took %v with a %v timeout", elapsed, cfg.Sampling.Timeout.Duration)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if samples[0].CPU.Usage != 12.5 {
		t.Errorf("CPU.Usage = %v, want 12.5", samples[0].CPU.Usage)
	}
	if got := samples[0].Disk.Usage; !reflect.DeepEqual(got, map[string]float64{"/": 0}) {
		t.Errorf("Disk.Usage = %v, want default for the timed-out mount", got)
	}
}
