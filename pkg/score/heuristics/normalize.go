package heuristics

import (
	"math"
	"time"
)

// NormalizeDownloads maps a download count onto [0,1] on a log scale:
// one million downloads saturate the signal.
func NormalizeDownloads(n int) float64 {
	if n <= 0 {
		return 0
	}
	return clamp01(math.Log10(float64(n)) / 6)
}

// NormalizeStars maps a star count onto [0,1] on a log scale: ten
// thousand stars saturate the signal.
func NormalizeStars(n int) float64 {
	if n <= 0 {
		return 0
	}
	return clamp01(math.Log10(float64(n)) / 4)
}

// Recency maps the time since last update onto [0,1], decaying linearly
// to zero over one year. An unknown update time scores zero.
func Recency(updatedAt *time.Time, now time.Time) float64 {
	if updatedAt == nil {
		return 0
	}
	days := now.Sub(*updatedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp01(1 - days/365)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
