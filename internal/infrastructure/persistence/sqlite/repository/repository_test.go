package repository

import (
	"strings"
	"testing"
	"time"
)

func TestFormatTimeIsFixedWidth(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coarse := formatTime(base.Add(120 * time.Millisecond))
	fine := formatTime(base.Add(123*time.Millisecond + 456*time.Microsecond))

	if len(coarse) != len(fine) {
		t.Fatalf("formatTime() widths differ: %q vs %q", coarse, fine)
	}
	if !(coarse < fine) {
		t.Fatalf("formatTime() lexicographic order broken: %q !< %q", coarse, fine)
	}
	if !strings.HasSuffix(coarse, "Z") {
		t.Fatalf("formatTime() = %q, want UTC suffix", coarse)
	}
}

func TestParseTimeAcceptsLegacyForm(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 120000000, time.UTC)

	// Rows written by earlier builds carry the variable-width form.
	if got := parseTime("2026-03-01T12:00:00.12Z"); !got.Equal(want) {
		t.Fatalf("parseTime(legacy) = %v, want %v", got, want)
	}
	if got := parseTime(formatTime(want)); !got.Equal(want) {
		t.Fatalf("parseTime(round trip) = %v, want %v", got, want)
	}
	if got := parseTime("not a timestamp"); !got.IsZero() {
		t.Fatalf("parseTime(malformed) = %v, want zero", got)
	}
}
