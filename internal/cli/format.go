// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 450 -> "7m 30s", 120 -> "2m", 45 -> "45s"
func FormatDuration(secs float64) string {
	total := int64(math.Round(secs))
	if total <= 0 {
		return "0s"
	}

	hours := total / 3600
	mins := (total % 3600) / 60
	rem := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0 && rem > 0:
		return fmt.Sprintf("%dm %ds", mins, rem)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", rem)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatShare returns part/total as a percentage string, "0.0%" when total is zero.
func FormatShare(part, total float64) string {
	if total <= 0 {
		return FormatPercent(0)
	}
	return FormatPercent(part / total * 100)
}

// FormatWindow renders a start/end pair as "2006-01-02 15:04 - 15:30" in loc,
// repeating the date when the window spans midnight.
func FormatWindow(start, end time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	s, e := start.In(loc), end.In(loc)
	if s.Format("2006-01-02") == e.Format("2006-01-02") {
		return s.Format("2006-01-02 15:04") + " - " + e.Format("15:04")
	}
	return s.Format("2006-01-02 15:04") + " - " + e.Format("2006-01-02 15:04")
}

// Truncate shortens s to n terminal columns, marking the cut with an ellipsis.
// Wide runes count as two columns.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	return runewidth.Truncate(s, n, "…")
}
