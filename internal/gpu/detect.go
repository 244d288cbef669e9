package gpu

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/sysfs"
)

// Detect probes for a GPU vendor. It never fails: a host with no
// recognised GPU yields VendorNone with a zero count.
func Detect(ctx context.Context, opts Options) Info {
	opts = opts.withDefaults()
	logger := opts.Logger

	if _, err := opts.Runner.LookPath(opts.NvidiaSMI); err == nil {
		count, err := nvidiaCount(ctx, opts)
		if err != nil {
			logger.Warn("nvidia-smi present but GPU count query failed", zap.Error(err))
		}
		logger.Info("Detected GPU vendor",
			zap.String("vendor", string(VendorNVIDIA)),
			zap.Int("count", count))
		return Info{Vendor: VendorNVIDIA, Count: count}
	}

	if cards := findAMDCards(opts.SysRoot); len(cards) > 0 {
		logger.Info("Detected GPU vendor",
			zap.String("vendor", string(VendorAMD)),
			zap.Strings("cards", cards))
		return Info{Vendor: VendorAMD, Count: len(cards), Cards: cards}
	}

	if _, err := opts.Runner.LookPath(opts.IntelGPUTop); err == nil {
		logger.Info("Detected GPU vendor",
			zap.String("vendor", string(VendorIntel)),
			zap.Int("count", 1))
		return Info{Vendor: VendorIntel, Count: 1}
	}

	logger.Info("No GPU detected")
	return Info{Vendor: VendorNone}
}

// findAMDCards returns the DRM cards that expose gpu_busy_percent, which
// only the amdgpu driver provides.
func findAMDCards(sysRoot string) []string {
	var cards []string
	for _, name := range sysfs.EntriesWithPrefix(filepath.Join(sysRoot, "class", "drm"), "card") {
		if !sysfs.IsCardDevice(name) {
			continue
		}
		if sysfs.Exists(filepath.Join(sysfs.DRMDevicePath(sysRoot, name), "gpu_busy_percent")) {
			cards = append(cards, name)
		}
	}
	sysfs.SortCards(cards)
	return cards
}
