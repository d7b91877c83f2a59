package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

// File serves events from a JSON file holding an ActivityWatch event array,
// or a bucket export of the form {"buckets": {"<id>": {"events": [...]}}}.
type File struct {
	Path string
}

// Events reads the file and keeps events whose timestamp lies in [start, end).
func (f File) Events(_ context.Context, start, end time.Time) ([]model.WindowEvent, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}

	raw, err := decodeEvents(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path, err)
	}
	all, err := convert(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path, err)
	}

	var out []model.WindowEvent
	for _, ev := range all {
		if ev.Timestamp.Before(start) || !ev.Timestamp.Before(end) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func decodeEvents(data []byte) ([]RawEvent, error) {
	var list []RawEvent
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var export struct {
		Buckets map[string]struct {
			Events []RawEvent `json:"events"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, err
	}
	for _, b := range export.Buckets {
		list = append(list, b.Events...)
	}
	return list, nil
}
