package sysfs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIsCardDevice(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"card0", true},
		{"card12", true},
		{"card0-DP-1", false},
		{"card", false},
		{"renderD128", false},
		{"version", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCardDevice(tt.name); got != tt.expected {
				t.Errorf("IsCardDevice(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestSortCards(t *testing.T) {
	cards := []string{"card10", "card2", "card0"}
	SortCards(cards)
	want := []string{"card0", "card2", "card10"}
	if !reflect.DeepEqual(cards, want) {
		t.Errorf("SortCards = %v, want %v", cards, want)
	}
}

func TestReadInt(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	bad := filepath.Join(dir, "bad")
	if err := os.WriteFile(good, []byte("45000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("N/A\n"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := ReadInt(good)
	if err != nil {
		t.Fatal(err)
	}
	if n != 45000 {
		t.Errorf("ReadInt = %d, want 45000", n)
	}
	if _, err := ReadInt(bad); err == nil {
		t.Error("ReadInt on non-numeric content should fail")
	}
	if _, err := ReadInt(filepath.Join(dir, "missing")); err == nil {
		t.Error("ReadInt on missing file should fail")
	}
}

func TestEntriesWithPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hwmon1", "hwmon0", "power"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	got := EntriesWithPrefix(dir, "hwmon")
	want := []string{"hwmon0", "hwmon1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EntriesWithPrefix = %v, want %v", got, want)
	}
	if got := EntriesWithPrefix(filepath.Join(dir, "missing"), "hwmon"); got != nil {
		t.Errorf("missing dir should yield nil, got %v", got)
	}
}
