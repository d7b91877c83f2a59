package pipeline

import (
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

const (
	// BinWidth is the width of one timeline bin.
	BinWidth = 5 * time.Minute
	// MaxTitleLen is the display limit for a bin title, in runes.
	MaxTitleLen = 60

	noActivityApp   = "Unknown"
	noActivityTitle = "No activity"
)

// AlignBin floors t (in UTC) to the 5-minute mark at or before it.
func AlignBin(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), (t.Minute()/5)*5, 0, 0, time.UTC)
}

// Bin slices [start, end) into 5-minute bins beginning at AlignBin(start).
// The last bin is truncated to end. events must be sorted and cats[i] must
// be the category of events[i]. Labels are formatted as HH:MM in display.
func Bin(events []model.WindowEvent, cats []model.Category, start, end time.Time, display *time.Location) []model.TimeBin {
	if display == nil {
		display = time.UTC
	}
	end = end.UTC()

	var bins []model.TimeBin
	for binStart := AlignBin(start); binStart.Before(end); {
		binEnd := binStart.Add(BinWidth)
		if binEnd.After(end) {
			binEnd = end
		}
		binSec := binEnd.Sub(binStart).Seconds()
		if binSec <= 0 {
			break
		}

		bins = append(bins, summarizeBin(events, cats, binStart, binEnd, display))
		binStart = binEnd
	}
	return bins
}

func summarizeBin(events []model.WindowEvent, cats []model.Category, binStart, binEnd time.Time, display *time.Location) model.TimeBin {
	bin := model.TimeBin{
		Label:    binStart.In(display).Format("15:04"),
		Start:    binStart,
		End:      binEnd,
		Category: model.CategoryOther,
		App:      noActivityApp,
		Title:    noActivityTitle,

		CategorySec: make(map[model.Category]float64),
	}

	var maxOverlap float64
	for i, ev := range events {
		ov := Overlap(ev.Timestamp, ev.End(), binStart, binEnd)
		if ov <= 0 {
			continue
		}
		bin.CategorySec[cats[i]] += ov
		// Strict > keeps the earliest event on ties.
		if ov > maxOverlap {
			maxOverlap = ov
			bin.Category = cats[i]
			bin.App = ev.AppOrDefault()
			bin.Title = ev.TitleOrDefault()
		}
	}

	bin.Title = TruncateTitle(bin.Title, MaxTitleLen)
	engaged := bin.CategorySec[model.CategoryMeeting] + bin.CategorySec[model.CategoryWorkRelated]
	if binSec := binEnd.Sub(binStart).Seconds(); binSec > 0 {
		bin.EngagedPct = clampPct(engaged / binSec * 100)
	}
	return bin
}

// TruncateTitle shortens s to n runes and appends "..." when it was longer.
func TruncateTitle(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
