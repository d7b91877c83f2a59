// Package pipeline classifies window events and aggregates them into
// engagement metrics, focus streaks and 5-minute timeline bins.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/theirongolddev/mfocus/internal/classify"
	"github.com/theirongolddev/mfocus/internal/model"
)

// Source returns window events in [start, end).
type Source interface {
	Events(ctx context.Context, start, end time.Time) ([]model.WindowEvent, error)
}

// Sink persists the classified events of one run. SaveEvents must be
// all-or-nothing: a failed call leaves nothing behind.
type Sink interface {
	SaveEvents(ctx context.Context, events []model.CategorizedEvent) error
}

// Request describes one analysis window and the identity used for persistence.
type Request struct {
	Start     time.Time
	End       time.Time
	UserID    string
	SessionID string
}

// Analyzer runs analyses against a Source. It holds no per-run state, so a
// single Analyzer may serve concurrent calls.
type Analyzer struct {
	Source        Source
	Oracle        classify.Oracle // optional
	Sink          Sink            // optional
	Rules         classify.Rules
	OracleTimeout time.Duration
	ExcludedApps  []string
	Display       *time.Location // bin label zone; UTC when nil
	Logger        *slog.Logger
}

// Analyze classifies every event in the window and aggregates the results.
// It returns ErrNoData when no informative events exist in range.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*model.Analysis, error) {
	if a.Source == nil {
		return nil, errors.New("pipeline: no event source configured")
	}
	start := req.Start.UTC()
	end := req.End.UTC()
	if !end.After(start) {
		return nil, fmt.Errorf("invalid window: end %s is not after start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	logger := a.logger()
	began := time.Now()

	events, err := a.Source.Events(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	fetched := len(events)
	events = FilterInformative(events, a.ExcludedApps)
	SortByTime(events)
	logger.Debug("fetched window events", "fetched", fetched, "informative", len(events))

	if len(events) == 0 {
		return nil, ErrNoData
	}

	classifier := classify.New(classify.Options{
		Rules:   a.Rules,
		Oracle:  a.Oracle,
		Timeout: a.OracleTimeout,
		Logger:  logger,
	})

	result := &model.Analysis{
		Start:             start,
		End:               end,
		TotalDurationSec:  end.Sub(start).Seconds(),
		CategoryDurations: make(map[model.Category]float64),
		Events:            make([]model.EventDetail, 0, len(events)),
	}

	cats := make([]model.Category, len(events))
	var rows []model.CategorizedEvent
	if a.Sink != nil {
		rows = make([]model.CategorizedEvent, 0, len(events))
	}
	for i, ev := range events {
		// Cancellation aborts the run; it is not an oracle failure.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis canceled: %w", err)
		}
		cat := classifier.Classify(ctx, ev)
		cats[i] = cat
		dur := ev.EffectiveDuration().Seconds()

		result.CategoryDurations[cat] += dur
		result.Events = append(result.Events, model.EventDetail{
			Category:    cat,
			App:         ev.AppOrDefault(),
			Title:       ev.TitleOrDefault(),
			DurationSec: dur,
		})

		if a.Sink != nil {
			rows = append(rows, model.CategorizedEvent{
				UserID:          req.UserID,
				SessionID:       req.SessionID,
				Timestamp:       ev.Timestamp,
				App:             ev.AppOrDefault(),
				Title:           ev.TitleOrDefault(),
				Category:        cat,
				DurationSeconds: int64(dur),
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled: %w", err)
	}

	if a.Sink != nil {
		if err := a.Sink.SaveEvents(ctx, rows); err != nil {
			return nil, &SinkError{Err: err}
		}
	}

	streaks := FocusStreaks(events, cats, end)
	result.FocusStreaks = len(streaks)
	result.AvgFocusSec = mean(streaks)
	result.Intervals = Bin(events, cats, start, end, a.Display)
	result.EngagementPct = EngagementPct(result.EngagedSec(), result.TotalDurationSec)

	logger.Debug("analysis complete",
		"events", len(events),
		"oracle_calls", classifier.OracleCalls(),
		"bins", len(result.Intervals),
		"elapsed", time.Since(began))

	return result, nil
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// EngagementPct returns engaged/total as a percentage rounded to one decimal,
// clamped to [0, 100]. A non-positive total yields 0.
func EngagementPct(engagedSec, totalSec float64) float64 {
	if totalSec <= 0 {
		return 0
	}
	pct := math.Round(engagedSec/totalSec*100*10) / 10
	return clampPct(pct)
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
