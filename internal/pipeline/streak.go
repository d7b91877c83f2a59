package pipeline

import (
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

// FocusStreaks returns the durations in seconds of each contiguous engaged
// run. events must be sorted and cats[i] must be the category of events[i].
// A streak ends at the timestamp of the first non-engaged event after it;
// one still open after the last event ends at windowEnd.
func FocusStreaks(events []model.WindowEvent, cats []model.Category, windowEnd time.Time) []float64 {
	var (
		streaks  []float64
		start    time.Time
		tracking bool
	)
	for i, ev := range events {
		if cats[i].Engaged() {
			if !tracking {
				start = ev.Timestamp
				tracking = true
			}
			continue
		}
		if tracking {
			streaks = append(streaks, ev.Timestamp.Sub(start).Seconds())
			tracking = false
		}
	}
	if tracking {
		streaks = append(streaks, windowEnd.Sub(start).Seconds())
	}
	return streaks
}
