package ui

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a string by removing characters from the middle,
// keeping both ends visible.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1 // room for the ellipsis rune
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		if m := int(d.Minutes()) % 60; m > 0 {
			return fmt.Sprintf("%dh %dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	default:
		days := int(d.Hours()) / 24
		if h := int(d.Hours()) % 24; h > 0 {
			return fmt.Sprintf("%dd %dh", days, h)
		}
		return fmt.Sprintf("%dd", days)
	}
}

// formatHashRate renders a GH/s reading, switching to TH/s above 1000.
func formatHashRate(ghs float64) string {
	if ghs <= 0 {
		return "--"
	}
	if ghs >= 1000 {
		return fmt.Sprintf("%.2f TH/s", ghs/1000)
	}
	return fmt.Sprintf("%.2f GH/s", ghs)
}

func formatFloat(v float64, places int, unit string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	s := fmt.Sprintf("%.*f", places, v)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// placeholder returns "--" for empty strings.
func placeholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return "--"
	}
	return s
}

func secondsToDuration(sec int64) time.Duration {
	return time.Duration(sec) * time.Second
}
