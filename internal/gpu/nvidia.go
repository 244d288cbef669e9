package gpu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vitalis-app/sysmon/internal/models"
)

var (
	nvidiaCountArgs = []string{"--query-gpu=count", "--format=csv,noheader,nounits"}
	nvidiaStatsArgs = []string{"--query-gpu=utilization.gpu,temperature.gpu", "--format=csv,noheader,nounits"}
)

// nvidiaCount asks nvidia-smi how many GPUs it manages. The count query
// prints the total once per GPU, so only the first line is read.
func nvidiaCount(ctx context.Context, opts Options) (int, error) {
	out, err := runTool(ctx, opts, opts.NvidiaSMI, nvidiaCountArgs...)
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	count, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, fmt.Errorf("parsing nvidia-smi count %q: %w", first, err)
	}
	return count, nil
}

// readNvidia queries utilization and temperature for every GPU in a single
// nvidia-smi call.
func readNvidia(ctx context.Context, opts Options, info Info) (Stats, error) {
	out, err := runTool(ctx, opts, opts.NvidiaSMI, nvidiaStatsArgs...)
	if err != nil {
		return Fallback(info), err
	}
	return parseNvidiaStats(string(out)), nil
}

// parseNvidiaStats parses "usage, temp" CSV lines. Lines with fewer than two
// columns are skipped; a line with unparsable values reports zero usage and
// an unknown temperature so device indices stay aligned.
func parseNvidiaStats(out string) Stats {
	stats := Stats{Usages: []float64{}, Temps: []int{}}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		usage, uerr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		temp, terr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if uerr != nil || terr != nil {
			usage, temp = 0, models.UnknownTemp
		}
		stats.Usages = append(stats.Usages, usage)
		stats.Temps = append(stats.Temps, temp)
	}
	return stats
}

func runTool(ctx context.Context, opts Options, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.CommandTimeout)
	defer cancel()

	out, err := opts.Runner.Output(ctx, name, args...)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}
