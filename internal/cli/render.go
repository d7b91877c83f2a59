package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// CategoryColor returns the display color for a category.
func CategoryColor(c model.Category) lipgloss.Color {
	switch c {
	case model.CategoryMeeting:
		return ColorBlue
	case model.CategoryWorkRelated:
		return ColorGreen
	case model.CategoryDistraction:
		return ColorRed
	case model.CategoryBrowser:
		return ColorYellow
	default:
		return ColorTextMuted
	}
}

// RenderCategory renders a category label in its color.
func RenderCategory(c model.Category) string {
	return lipgloss.NewStyle().Foreground(CategoryColor(c)).Render(string(c))
}

// EngagementColor grades an engaged percentage: green from 70, orange from 40, red below.
func EngagementColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 70:
		return ColorGreen
	case pct >= 40:
		return ColorOrange
	default:
		return ColorRed
	}
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator. Column 0 is left-aligned,
// the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, widths, func(int) lipgloss.Style { return headerStyle }, false))
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, widths, func(int) lipgloss.Style { return valueStyle }, true))
	}
	b.WriteString(rule(widths, "╰", "┴", "╯"))

	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func rule(widths []int, left, mid, right string) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

func line(cells []string, widths []int, style func(int) lipgloss.Style, alignRight bool) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("│"))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
		if alignRight && i > 0 {
			b.WriteString(style(i).Render(" " + pad + cell + " "))
		} else {
			b.WriteString(style(i).Render(" " + cell + pad + " "))
		}
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(dimStyle.Render("│"))
	b.WriteString("\n")
	return b.String()
}

// RenderPercentBar renders a width-cell bar filled to pct (0-100).
func RenderPercentBar(pct float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	return bar + mutedStyle.Render(strings.Repeat("░", width-filled))
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline generates a unicode block sparkline from a series of values,
// scaled to the series maximum.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	return renderSpark(values, peak)
}

// RenderEngagementSparkline renders per-bin engaged percentages on a fixed
// 0-100 scale, so an idle timeline stays flat.
func RenderEngagementSparkline(pcts []float64) string {
	return renderSpark(pcts, 100)
}

func renderSpark(values []float64, peak float64) string {
	if peak <= 0 {
		peak = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders a labeled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int, color lipgloss.Color) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	barLen = min(max(barLen, 0), maxWidth)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))
	return fmt.Sprintf("  %-14s %s", label, bar)
}
