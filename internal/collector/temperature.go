// CPU temperature collector: reads the package temperature from hwmon,
// falling back to ACPI thermal zones and then to gopsutil's sensor list.
// The first plausible reading wins; integer °C is reported.
package collector

import (
	"context"
	"math"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/models"
	"github.com/vitalis-app/sysmon/internal/sysfs"
)

// cpuHwmonNames are hwmon driver names that report CPU temperatures.
var cpuHwmonNames = map[string]bool{
	"coretemp":     true,
	"k10temp":      true,
	"zenpower":     true,
	"cpu_thermal":  true,
	"x86_pkg_temp": true,
	"amd_energy":   true,
}

// cpuThermalZoneTypes are thermal_zone types that track the CPU package.
var cpuThermalZoneTypes = map[string]bool{
	"x86_pkg_temp": true,
	"cpu-thermal":  true,
	"soc_thermal":  true,
	"proc_thermal": true,
}

// Sensor name substrings used to identify CPU sensors in gopsutil's list.
// Linux:  coretemp_core_0_input, k10temp_tctl_input, acpitz_temp1_input
var cpuSensorKeys = []string{
	"cpu", "core", "package",
	"tctl", "tdie", "k10temp", "coretemp",
	"acpitz", "zenpower",
}

// Plausibility windows, in millidegrees. hwmon readings below 10 °C are
// treated as unpopulated inputs.
const (
	hwmonMinMilli   = 10000
	thermalMinMilli = 1000
	maxMilli        = 120000
)

// CPUTempCollector collects the CPU temperature.
type CPUTempCollector struct {
	sysRoot string
	sensors func(ctx context.Context) ([]host.TemperatureStat, error)
	logger  *zap.Logger
}

// NewCPUTempCollector creates a temperature collector reading from the sysfs
// tree at sysRoot. The logger parameter may be nil.
func NewCPUTempCollector(sysRoot string, logger *zap.Logger) *CPUTempCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sysRoot == "" {
		sysRoot = sysfs.DefaultRoot
	}
	return &CPUTempCollector{
		sysRoot: sysRoot,
		sensors: host.SensorsTemperaturesWithContext,
		logger:  logger,
	}
}

// Name returns the collector identifier.
func (c *CPUTempCollector) Name() string { return NameCPUTemp }

// Collect returns the temperature as an int, or models.UnknownTemp when no
// source yields a plausible value. It never fails.
func (c *CPUTempCollector) Collect(ctx context.Context) (interface{}, error) {
	if temp, ok := c.fromHwmon(); ok {
		return temp, nil
	}
	if temp, ok := c.fromThermalZones(); ok {
		return temp, nil
	}
	if temp, ok := c.fromSensors(ctx); ok {
		return temp, nil
	}
	c.logger.Debug("No CPU temperature sensor found")
	return models.UnknownTemp, nil
}

// IsAvailable returns true: always registered; reports unknown if sensors are missing.
func (c *CPUTempCollector) IsAvailable() bool { return true }

func (c *CPUTempCollector) fromHwmon() (int, bool) {
	base := filepath.Join(c.sysRoot, "class", "hwmon")
	for _, hwmon := range sysfs.EntriesWithPrefix(base, "") {
		dir := filepath.Join(base, hwmon)
		name, err := sysfs.ReadString(filepath.Join(dir, "name"))
		if err != nil || !cpuHwmonNames[name] {
			continue
		}

		for _, item := range sysfs.EntriesWithPrefix(dir, "temp") {
			if !strings.HasSuffix(item, "_input") {
				continue
			}
			milli, err := sysfs.ReadInt(filepath.Join(dir, item))
			if err != nil {
				continue
			}
			if milli > hwmonMinMilli && milli < maxMilli {
				return milli / 1000, true
			}
		}
	}
	return 0, false
}

func (c *CPUTempCollector) fromThermalZones() (int, bool) {
	base := filepath.Join(c.sysRoot, "class", "thermal")
	for _, zone := range sysfs.EntriesWithPrefix(base, "thermal_zone") {
		dir := filepath.Join(base, zone)
		zoneType, err := sysfs.ReadString(filepath.Join(dir, "type"))
		if err != nil || !cpuThermalZoneTypes[zoneType] {
			continue
		}
		milli, err := sysfs.ReadInt(filepath.Join(dir, "temp"))
		if err != nil {
			continue
		}
		if milli > thermalMinMilli && milli < maxMilli {
			return milli / 1000, true
		}
	}
	return 0, false
}

// fromSensors returns the hottest CPU-like sensor known to gopsutil.
func (c *CPUTempCollector) fromSensors(ctx context.Context) (int, bool) {
	if c.sensors == nil {
		return 0, false
	}
	temps, err := c.sensors(ctx)
	if err != nil {
		// gopsutil returns partial readings alongside warnings.
		c.logger.Debug("Temperature sensors reported errors", zap.Error(err))
	}

	var hottest float64
	found := false
	for _, t := range temps {
		if !isValidTemperature(t.Temperature) {
			continue
		}
		if !matchesSensor(strings.ToLower(t.SensorKey), cpuSensorKeys) {
			continue
		}
		if !found || t.Temperature > hottest {
			hottest = t.Temperature
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return int(math.Floor(hottest)), true
}

// matchesSensor checks if the sensor name contains any of the given key substrings.
func matchesSensor(name string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

// isValidTemperature returns true if the temperature in °C is within a plausible range.
func isValidTemperature(temp float64) bool {
	return temp*1000 > thermalMinMilli && temp*1000 < maxMilli
}
