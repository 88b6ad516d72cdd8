package tui

import (
	"strings"

	"github.com/muesli/reflow/truncate"

	"cocktailchat/internal/format"
)

// compactSingleLine sanitizes text and flattens it to one line of at most limit cells.
func compactSingleLine(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return truncate.StringWithTail(strings.Join(strings.Fields(format.Sanitize(text)), " "), uint(limit), "...")
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
