package gpu

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/vitalis-app/sysmon/internal/models"
	"github.com/vitalis-app/sysmon/internal/sysfs"
)

// readAMD reads gpu_busy_percent and the first hwmon temp1_input of every
// detected card. Per-card failures fall back to zero usage or an unknown
// temperature; the combined error is returned alongside complete stats.
func readAMD(sysRoot string, cards []string) (Stats, error) {
	stats := Stats{
		Usages: make([]float64, 0, len(cards)),
		Temps:  make([]int, 0, len(cards)),
	}
	var errs error

	for _, card := range cards {
		device := sysfs.DRMDevicePath(sysRoot, card)

		usage, err := sysfs.ReadFloat(filepath.Join(device, "gpu_busy_percent"))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s usage: %w", card, err))
			usage = 0
		}
		stats.Usages = append(stats.Usages, usage)
		stats.Temps = append(stats.Temps, amdTemp(device))
	}

	return stats, errs
}

// amdTemp returns the edge temperature in °C from the card's first hwmon
// directory. A missing sensor is not an error: many cards lack one.
func amdTemp(device string) int {
	hwmonBase := filepath.Join(device, "hwmon")
	dirs := sysfs.EntriesWithPrefix(hwmonBase, "hwmon")
	if len(dirs) == 0 {
		return models.UnknownTemp
	}
	milli, err := sysfs.ReadInt(filepath.Join(hwmonBase, dirs[0], "temp1_input"))
	if err != nil {
		return models.UnknownTemp
	}
	return milliToCelsius(milli)
}

// milliToCelsius floor-divides a millidegree reading, so -500 is -1 °C.
func milliToCelsius(milli int) int {
	c := milli / 1000
	if milli%1000 < 0 {
		c--
	}
	return c
}
