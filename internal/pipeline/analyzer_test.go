package pipeline

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/store"
)

type fakeSource struct {
	events []model.WindowEvent
	err    error
}

func (f *fakeSource) Events(_ context.Context, _, _ time.Time) ([]model.WindowEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.WindowEvent, len(f.events))
	copy(out, f.events)
	return out, nil
}

type countingOracle struct {
	reply string
	calls int
}

func (o *countingOracle) Complete(context.Context, string) (string, error) {
	o.calls++
	return o.reply, nil
}

type memorySink struct {
	rows    []model.CategorizedEvent
	batches int
	err     error
}

func (m *memorySink) SaveEvents(_ context.Context, evs []model.CategorizedEvent) error {
	m.batches++
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, evs...)
	return nil
}

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func at(min, sec int) time.Time {
	return base.Add(time.Duration(min)*time.Minute + time.Duration(sec)*time.Second)
}

func secs(n int) *time.Duration {
	d := time.Duration(n) * time.Second
	return &d
}

func ev(ts time.Time, d *time.Duration, app, title string) model.WindowEvent {
	return model.WindowEvent{Timestamp: ts, Duration: d, App: app, Title: title}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAnalyze_FullMeeting(t *testing.T) {
	hkt := time.FixedZone("HKT", 8*3600)
	a := &Analyzer{
		Source:  &fakeSource{events: []model.WindowEvent{ev(base, secs(1800), "zoom.us", "Zoom Meeting")}},
		Display: hkt,
	}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.EngagementPct != 100.0 {
		t.Fatalf("EngagementPct = %.1f, want 100.0", res.EngagementPct)
	}
	if res.TotalDurationSec != 1800 {
		t.Fatalf("TotalDurationSec = %.0f, want 1800", res.TotalDurationSec)
	}
	if res.AvgFocusSec != 1800 {
		t.Fatalf("AvgFocusSec = %.0f, want 1800", res.AvgFocusSec)
	}
	if len(res.Intervals) != 6 {
		t.Fatalf("len(Intervals) = %d, want 6", len(res.Intervals))
	}

	wantLabels := []string{"18:00", "18:05", "18:10", "18:15", "18:20", "18:25"}
	for i, bin := range res.Intervals {
		if bin.EngagedPct != 100.0 {
			t.Errorf("bin %d EngagedPct = %.1f, want 100", i, bin.EngagedPct)
		}
		if bin.Category != model.CategoryMeeting {
			t.Errorf("bin %d Category = %q, want meeting", i, bin.Category)
		}
		if bin.Label != wantLabels[i] {
			t.Errorf("bin %d Label = %q, want %q", i, bin.Label, wantLabels[i])
		}
	}
}

func TestAnalyze_NoData(t *testing.T) {
	tests := []struct {
		name   string
		events []model.WindowEvent
	}{
		{"empty", nil},
		{"only lock screen", []model.WindowEvent{
			ev(at(1, 0), secs(60), "loginwindow", ""),
			ev(at(2, 0), secs(60), "ScreenSaver", ""),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Analyzer{Source: &fakeSource{events: tt.events}, ExcludedApps: DefaultExcludedApps}
			res, err := a.Analyze(context.Background(), Request{Start: base, End: at(30, 0)})
			if !errors.Is(err, ErrNoData) {
				t.Fatalf("err = %v, want ErrNoData", err)
			}
			if res != nil {
				t.Fatalf("result = %+v, want nil", res)
			}
		})
	}
}

func TestAnalyze_BackToBackTieAndHalfEngaged(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{
		ev(at(2, 30), secs(600), "chrome", "funny cat video"),
		ev(at(12, 30), secs(600), "vscode", "main.rs"),
	}}}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: at(20, 0)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.EngagementPct != 50.0 {
		t.Fatalf("EngagementPct = %.1f, want 50.0", res.EngagementPct)
	}
	if len(res.Intervals) != 4 {
		t.Fatalf("len(Intervals) = %d, want 4", len(res.Intervals))
	}

	wantPct := []float64{0, 0, 50, 100}
	for i, bin := range res.Intervals {
		if !approx(bin.EngagedPct, wantPct[i]) {
			t.Errorf("bin %d EngagedPct = %.2f, want %.0f", i, bin.EngagedPct, wantPct[i])
		}
	}

	// 150s each way in 10:10-10:15: the earlier event wins the tie.
	if mid := res.Intervals[2]; mid.App != "chrome" || mid.Category != model.CategoryBrowser {
		t.Fatalf("tie bin dominant = %s/%s, want chrome/browser", mid.App, mid.Category)
	}

	// vscode streak opens at 10:12:30 and closes at the window end.
	if !approx(res.AvgFocusSec, 450) {
		t.Fatalf("AvgFocusSec = %.1f, want 450", res.AvgFocusSec)
	}
}

func TestAnalyze_DominantIsStrictlyLarger(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{
		ev(at(0, 0), secs(660), "chrome", "funny cat video"),
		ev(at(11, 0), secs(540), "vscode", "main.rs"),
	}}}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: at(20, 0)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	bin := res.Intervals[2]
	if bin.App != "vscode" || bin.Category != model.CategoryWorkRelated {
		t.Fatalf("dominant = %s/%s, want vscode/work_related", bin.App, bin.Category)
	}
	if !approx(bin.EngagedPct, 80) {
		t.Fatalf("EngagedPct = %.2f, want 80", bin.EngagedPct)
	}
}

func TestAnalyze_StraddlingEventOnlyCountsOverlap(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{
		ev(base.Add(-2*time.Minute), secs(600), "Code", "main.go"),
	}}}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: at(10, 0)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Intervals) != 2 {
		t.Fatalf("len(Intervals) = %d, want 2", len(res.Intervals))
	}
	if got := res.Intervals[0].CategorySec[model.CategoryWorkRelated]; got != 300 {
		t.Fatalf("bin 0 work seconds = %.0f, want 300", got)
	}
	if got := res.Intervals[1].CategorySec[model.CategoryWorkRelated]; got != 180 {
		t.Fatalf("bin 1 work seconds = %.0f, want 180", got)
	}
	if res.EngagementPct < 0 || res.EngagementPct > 100 {
		t.Fatalf("EngagementPct = %.1f out of range", res.EngagementPct)
	}
}

func TestAnalyze_MisalignedStartAndShortLastBin(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{
		ev(at(3, 0), secs(60), "Code", "main.go"),
	}}}

	res, err := a.Analyze(context.Background(), Request{Start: at(3, 17), End: at(14, 0)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Intervals) != 3 {
		t.Fatalf("len(Intervals) = %d, want 3", len(res.Intervals))
	}
	if !res.Intervals[0].Start.Equal(base) {
		t.Fatalf("first bin starts %v, want %v", res.Intervals[0].Start, base)
	}
	last := res.Intervals[2]
	if got := last.End.Sub(last.Start); got != 4*time.Minute {
		t.Fatalf("last bin width = %s, want 4m", got)
	}
	if got := res.Intervals[0].CategorySec[model.CategoryWorkRelated]; got != 60 {
		t.Fatalf("event inside one bin contributed %.0f, want 60", got)
	}
	if !approx(res.Intervals[0].EngagedPct, 20) {
		t.Fatalf("bin 0 EngagedPct = %.2f, want 20", res.Intervals[0].EngagedPct)
	}
}

func TestAnalyze_SortsAndTotals(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{
		ev(at(5, 0), nil, "Code", "b.go"),
		ev(at(2, 0), secs(180), "Safari", "news"),
		ev(at(0, 0), secs(120), "Code", "a.go"),
	}}}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: at(10, 0)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Events[0].Title != "a.go" || res.Events[2].Title != "b.go" {
		t.Fatalf("events not sorted: %+v", res.Events)
	}
	if res.Events[2].DurationSec != model.DefaultEventDuration.Seconds() {
		t.Fatalf("default duration = %.0f, want 10", res.Events[2].DurationSec)
	}
	if got := res.CategoryDurations[model.CategoryWorkRelated]; got != 130 {
		t.Fatalf("work_related total = %.0f, want 130", got)
	}
	if got := res.CategoryDurations[model.CategoryBrowser]; got != 180 {
		t.Fatalf("browser total = %.0f, want 180", got)
	}
	// 130 / 600 = 21.666...
	if res.EngagementPct != 21.7 {
		t.Fatalf("EngagementPct = %v, want 21.7", res.EngagementPct)
	}
	// Streaks: 10:00-10:02 (120s) and 10:05-10:10 (300s).
	if res.FocusStreaks != 2 || !approx(res.AvgFocusSec, 210) {
		t.Fatalf("streaks = %d avg %.1f, want 2 avg 210", res.FocusStreaks, res.AvgFocusSec)
	}
}

func TestAnalyze_CacheIsPerRun(t *testing.T) {
	oracle := &countingOracle{reply: "distraction"}
	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{
			ev(at(0, 0), secs(60), "Spotify", "Liked Songs"),
			ev(at(1, 0), secs(60), "Spotify", "Liked Songs"),
			ev(at(2, 0), secs(60), "spotify", "liked songs"),
		}},
		Oracle: oracle,
	}

	for run := 1; run <= 2; run++ {
		res, err := a.Analyze(context.Background(), Request{Start: base, End: at(5, 0)})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if res.CategoryDurations[model.CategoryDistraction] != 180 {
			t.Fatalf("run %d distraction = %.0f, want 180", run, res.CategoryDurations[model.CategoryDistraction])
		}
		if oracle.calls != run {
			t.Fatalf("after run %d oracle calls = %d, want %d", run, oracle.calls, run)
		}
	}
}

func TestAnalyze_SinkRows(t *testing.T) {
	sink := &memorySink{}
	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{
			ev(at(0, 0), secs(90), "zoom.us", "Standup"),
			ev(at(2, 0), nil, "Code", "main.go"),
		}},
		Sink: sink,
	}

	_, err := a.Analyze(context.Background(), Request{Start: base, End: at(5, 0), UserID: "u1", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(sink.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sink.rows))
	}
	if sink.batches != 1 {
		t.Fatalf("batches = %d, want one write per run", sink.batches)
	}
	r := sink.rows[0]
	if r.UserID != "u1" || r.SessionID != "s1" || r.Category != model.CategoryMeeting || r.DurationSeconds != 90 {
		t.Fatalf("row 0 = %+v", r)
	}
	if sink.rows[1].DurationSeconds != 10 {
		t.Fatalf("row 1 duration = %d, want 10", sink.rows[1].DurationSeconds)
	}
}

func TestAnalyze_SinkFailureIsFatal(t *testing.T) {
	diskFull := errors.New("disk full")
	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{ev(at(0, 0), secs(60), "Code", "x")}},
		Sink:   &memorySink{err: diskFull},
	}

	res, err := a.Analyze(context.Background(), Request{Start: base, End: at(5, 0)})
	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) || !errors.Is(err, diskFull) {
		t.Fatalf("err = %v, want SinkError wrapping disk full", err)
	}
	if res != nil {
		t.Fatal("partial result returned on sink failure")
	}
}

// corruptSecondRow forwards to a real store but makes the second row violate
// the category constraint, so the batch fails after the first insert.
type corruptSecondRow struct {
	*store.Store
}

func (c corruptSecondRow) SaveEvents(ctx context.Context, evs []model.CategorizedEvent) error {
	evs = append([]model.CategorizedEvent(nil), evs...)
	if len(evs) > 1 {
		evs[1].Category = model.Category("bogus")
	}
	return c.Store.SaveEvents(ctx, evs)
}

func TestAnalyze_FailedSinkWriteLeavesNoRows(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{
			ev(at(0, 0), secs(60), "zoom.us", "Standup"),
			ev(at(1, 0), secs(60), "Code", "main.go"),
		}},
		Sink: corruptSecondRow{st},
	}
	_, err = a.Analyze(context.Background(), Request{Start: base, End: at(5, 0), SessionID: "s1"})
	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("err = %v, want *SinkError", err)
	}

	rows, err := st.ListEvents(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows persisted after aborted run = %d, want 0", len(rows))
	}
}

// ctxOracle fails with the context error, and cancels the run on its first call
// when cancel is set.
type ctxOracle struct {
	cancel context.CancelFunc
	calls  int
}

func (o *ctxOracle) Complete(ctx context.Context, _ string) (string, error) {
	o.calls++
	if o.cancel != nil {
		o.cancel()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "work_related", nil
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := &ctxOracle{}
	sink := &memorySink{}
	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{ev(at(0, 0), secs(300), "Figma", "Design review")}},
		Oracle: oracle,
		Sink:   sink,
	}

	res, err := a.Analyze(ctx, Request{Start: base, End: at(5, 0)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Fatalf("result returned for canceled run: %+v", res)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle calls = %d, want 0", oracle.calls)
	}
	if sink.batches != 0 {
		t.Fatalf("sink written %d times for canceled run", sink.batches)
	}
}

func TestAnalyze_CanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	oracle := &ctxOracle{cancel: cancel}
	sink := &memorySink{}
	a := &Analyzer{
		Source: &fakeSource{events: []model.WindowEvent{
			ev(at(0, 0), secs(60), "Figma", "Design review"),
			ev(at(1, 0), secs(60), "Notion", "Roadmap"),
		}},
		Oracle: oracle,
		Sink:   sink,
	}

	res, err := a.Analyze(ctx, Request{Start: base, End: at(5, 0)})
	if !errors.Is(err, context.Canceled) || res != nil {
		t.Fatalf("Analyze = %v, %v; want canceled error and no result", res, err)
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", oracle.calls)
	}
	if sink.batches != 0 {
		t.Fatalf("sink written %d times for canceled run", sink.batches)
	}
}

func TestAnalyze_SourceError(t *testing.T) {
	down := errors.New("connection refused")
	a := &Analyzer{Source: &fakeSource{err: down}}
	_, err := a.Analyze(context.Background(), Request{Start: base, End: at(5, 0)})
	if !errors.Is(err, down) || errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}

func TestAnalyze_InvalidWindow(t *testing.T) {
	a := &Analyzer{Source: &fakeSource{}}
	if _, err := a.Analyze(context.Background(), Request{Start: base, End: base}); err == nil {
		t.Fatal("expected error for empty window")
	}
}

func TestAnalyze_NormalizesOffsets(t *testing.T) {
	hkt := time.FixedZone("HKT", 8*3600)
	a := &Analyzer{Source: &fakeSource{events: []model.WindowEvent{ev(base, secs(300), "Code", "x")}}}

	res, err := a.Analyze(context.Background(), Request{Start: base.In(hkt), End: base.Add(5 * time.Minute).In(hkt)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Start.Location() != time.UTC || len(res.Intervals) != 1 {
		t.Fatalf("start = %v bins = %d", res.Start, len(res.Intervals))
	}
}
