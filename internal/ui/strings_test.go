package ui

import (
	"testing"
	"time"
)

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"negative", -5 * time.Second, "now"},
		{"subsecond", 0, "now"},
		{"seconds", 12 * time.Second, "12s"},
		{"minutes", 61 * time.Second, "1m"},
		{"hours_only", 2*time.Hour + 10*time.Second, "2h"},
		{"hours_minutes", 2*time.Hour + 3*time.Minute, "2h 3m"},
		{"days", 24 * time.Hour, "1d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeDuration(tc.in); got != tc.want {
				t.Fatalf("humanizeDuration(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  studio  ", 10); got != "studio" {
		t.Fatalf("truncate trimmed = %q, want studio", got)
	}
	if got := truncate("Recording Room", 8); got != "Recor..." {
		t.Fatalf("truncate = %q, want Recor...", got)
	}
	if got := truncate("abcd", 2); got != "ab" {
		t.Fatalf("truncate short limit = %q, want ab", got)
	}
}

func TestCellPadsToWidth(t *testing.T) {
	if got := cell("Pune", 6); got != "Pune  " {
		t.Fatalf("cell = %q, want %q", got, "Pune  ")
	}
	if got := cell("Bangalore", 6); got != "Ban..." {
		t.Fatalf("cell = %q, want %q", got, "Ban...")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"", 0, true},
		{" 45 ", 45, true},
		{"$12.5", 12.5, true},
		{"cheap", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parsePrice(%q) = %v, %v, want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := formatPrice(40); got != "40/hr" {
		t.Fatalf("formatPrice = %q, want 40/hr", got)
	}
	if got := formatRating(0); got != "-" {
		t.Fatalf("formatRating(0) = %q, want -", got)
	}
	if got := formatRating(4.26); got != "4.3" {
		t.Fatalf("formatRating(4.26) = %q, want 4.3", got)
	}
}
