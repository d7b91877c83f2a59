package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and info on the right.
func RenderStatusBar(width int, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [tab]view  [r]erun  [t]heme  [q]uit"
	right := ""
	if info != "" {
		right = info + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + spaces(padding) + right)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
