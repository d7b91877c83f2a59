package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values on a fixed 0-peak scale in one color.
func Sparkline(values []float64, peak float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// EngagementChart renders one column per bin, height rows tall, scaled to
// 0-100% and colored by the bin's dominant category. labels are drawn under
// every fourth column. Falls back to a sparkline when there is no room.
func EngagementChart(bins []model.TimeBin, width, height int) string {
	if len(bins) == 0 {
		return ""
	}
	t := theme.Active

	const yLabelW = 5 // "100% "
	colW := 2
	if len(bins)*colW > width-yLabelW {
		colW = 1
	}
	if height < 3 || len(bins)*colW > width-yLabelW {
		values := make([]float64, len(bins))
		for i, b := range bins {
			values[i] = b.EngagedPct
		}
		return Sparkline(values, 100, t.Accent)
	}

	axis := lipgloss.NewStyle().Foreground(t.TextDim)
	var b strings.Builder

	// Each row covers 100/height percent; partial cells use eighth blocks.
	rowPct := 100 / float64(height)
	for row := height; row >= 1; row-- {
		switch row {
		case height:
			b.WriteString(axis.Render(fmt.Sprintf("%4s ", "100%")))
		case (height + 1) / 2:
			b.WriteString(axis.Render(fmt.Sprintf("%4s ", "50%")))
		default:
			b.WriteString(strings.Repeat(" ", yLabelW))
		}

		floor := float64(row-1) * rowPct
		for _, bin := range bins {
			cell := strings.Repeat(" ", colW)
			if fill := bin.EngagedPct - floor; fill > 0 {
				idx := len(blocks) - 1
				if fill < rowPct {
					idx = min(int(fill/rowPct*float64(len(blocks))), len(blocks)-1)
				}
				cell = strings.Repeat(string(blocks[idx]), colW)
			}
			b.WriteString(lipgloss.NewStyle().Foreground(t.Category(bin.Category)).Render(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", yLabelW))
	b.WriteString(axis.Render(axisLabels(bins, colW)))
	return b.String()
}

func axisLabels(bins []model.TimeBin, colW int) string {
	line := []rune(strings.Repeat(" ", len(bins)*colW))
	step := max(4, 6/colW+1)
	for i := 0; i < len(bins); i += step {
		label := []rune(bins[i].Label)
		pos := i * colW
		if pos+len(label) > len(line) {
			break
		}
		copy(line[pos:], label)
	}
	return string(line)
}
