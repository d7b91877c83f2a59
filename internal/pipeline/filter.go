package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/mfocus/internal/model"
)

// DefaultExcludedApps are window states that carry no activity information.
var DefaultExcludedApps = []string{"loginwindow", "lockscreen", "screensaver"}

// FilterInformative drops events whose app name equals (case-insensitively)
// one of excluded.
func FilterInformative(events []model.WindowEvent, excluded []string) []model.WindowEvent {
	if len(excluded) == 0 {
		return events
	}
	skip := make(map[string]struct{}, len(excluded))
	for _, app := range excluded {
		skip[strings.ToLower(strings.TrimSpace(app))] = struct{}{}
	}

	out := make([]model.WindowEvent, 0, len(events))
	for _, ev := range events {
		if _, ok := skip[strings.ToLower(ev.App)]; ok {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// SortByTime orders events ascending by timestamp, keeping source order on ties.
func SortByTime(events []model.WindowEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
