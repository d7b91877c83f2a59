package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Timeline", Key: 'l', KeyPos: 4},
	{Name: "Events", Key: 'e', KeyPos: 0},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int) string {
	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}
	return " " + strings.Join(parts, " ")
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	inactive := lipgloss.NewStyle().Foreground(t.TextMuted)
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	name := tab.Name
	if tab.KeyPos < 0 || tab.KeyPos >= len(name) {
		return " " + inactive.Render(name) + dim.Render("[") + key.Render(string(tab.Key)) + dim.Render("]") + " "
	}
	return " " + inactive.Render(name[:tab.KeyPos]) +
		key.Render(name[tab.KeyPos:tab.KeyPos+1]) +
		inactive.Render(name[tab.KeyPos+1:]) + " "
}

// TabVisualWidth returns the rendered width of tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
