// Package sysfs holds small helpers for reading single-value files under
// /sys and /proc. All readers take absolute paths so callers can point
// them at a fixture tree in tests.
package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultRoot is the mount point of sysfs on Linux.
const DefaultRoot = "/sys"

// ReadString reads a single-line sysfs file and returns its trimmed content.
func ReadString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadInt reads a base-10 integer from a sysfs file.
func ReadInt(path string) (int, error) {
	value, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return n, nil
}

// ReadFloat reads a decimal number from a sysfs file.
func ReadFloat(path string) (float64, error) {
	value, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EntriesWithPrefix returns the names of the entries in dir that start with
// prefix, in lexical order. A missing directory yields no entries.
func EntriesWithPrefix(dir, prefix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	return names
}

// IsCardDevice returns true for DRM card device names (card0, card1, ...)
// but not connectors (card0-DP-1) or render nodes (renderD128).
func IsCardDevice(name string) bool {
	_, ok := cardIndex(name)
	return ok
}

// SortCards orders DRM card names by their numeric index so that card10
// follows card9.
func SortCards(cards []string) {
	sort.Slice(cards, func(i, j int) bool {
		a, _ := cardIndex(cards[i])
		b, _ := cardIndex(cards[j])
		return a < b
	})
}

// DRMDevicePath returns the sysfs device directory of a DRM card.
func DRMDevicePath(root, card string) string {
	return filepath.Join(root, "class", "drm", card, "device")
}

func cardIndex(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return 0, false
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
