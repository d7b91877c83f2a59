package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

// EngagementBar renders a block bar filled to pct (0-100) followed by the percentage.
func EngagementBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp(pct, 0, 100)
	filled := min(int(pct/100*float64(width)), width)

	color := t.Engagement(pct)
	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + " " + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct))
}

// ShareBar renders a labeled bubbles progress bar for value/total.
func ShareBar(label string, value, total float64, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active

	share := 0.0
	if total > 0 {
		share = clamp(value/total, 0, 1)
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		" " + bar.ViewAs(share) +
		" " + pctStyle.Render(fmt.Sprintf("%5.1f%%", share*100))
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
