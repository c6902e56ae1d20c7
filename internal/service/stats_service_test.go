package service

import (
	"math"
	"testing"

	"github.com/maya-downloads/api/internal/constants"
)

func TestNormalizeWindowDays(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{7, 7},
		{0.5, 0.5},
		{0, constants.StatsDefaultWindowDays},
		{-3, constants.StatsDefaultWindowDays},
		{math.NaN(), constants.StatsDefaultWindowDays},
		{math.Inf(1), constants.StatsDefaultWindowDays},
		{9999, constants.StatsMaxWindowDays},
		{constants.StatsMaxWindowDays, constants.StatsMaxWindowDays},
	}
	for _, tc := range cases {
		if got := NormalizeWindowDays(tc.in); got != tc.want {
			t.Fatalf("NormalizeWindowDays(%v) want %v got %v", tc.in, tc.want, got)
		}
	}
}

func TestStatsCacheKeyStableForWindow(t *testing.T) {
	if statsCacheKey(7) != "stats:summary:7" {
		t.Fatalf("key mismatch: %s", statsCacheKey(7))
	}
	if statsCacheKey(0.5) != "stats:summary:0.5" {
		t.Fatalf("fractional key mismatch: %s", statsCacheKey(0.5))
	}
}
