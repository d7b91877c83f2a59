// Package source fetches window events from ActivityWatch or from exported files.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

// Source returns window events within the half-open range [start, end).
type Source interface {
	Events(ctx context.Context, start, end time.Time) ([]model.WindowEvent, error)
}

// RawEvent is one event as serialized by the ActivityWatch REST API and its exports.
type RawEvent struct {
	ID        int64        `json:"id,omitempty"`
	Timestamp string       `json:"timestamp"`
	Duration  *float64     `json:"duration,omitempty"` // seconds
	Data      RawEventData `json:"data"`
}

// RawEventData holds the window watcher payload.
type RawEventData struct {
	App   string `json:"app"`
	Title string `json:"title"`
}

// toModel converts a raw event. Timestamps without an offset are rejected.
func (r RawEvent) toModel() (model.WindowEvent, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return model.WindowEvent{}, fmt.Errorf("event %d: bad timestamp %q: %w", r.ID, r.Timestamp, err)
	}
	ev := model.WindowEvent{
		Timestamp: ts.UTC(),
		App:       r.Data.App,
		Title:     r.Data.Title,
	}
	if r.Duration != nil {
		d := time.Duration(*r.Duration * float64(time.Second))
		ev.Duration = &d
	}
	return ev, nil
}

func convert(raw []RawEvent) ([]model.WindowEvent, error) {
	events := make([]model.WindowEvent, 0, len(raw))
	for _, r := range raw {
		ev, err := r.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
