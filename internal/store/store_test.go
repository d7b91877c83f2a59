package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListEvents(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	rows := []model.CategorizedEvent{
		{UserID: "u1", SessionID: "a", Timestamp: base, App: "zoom.us", Title: "Standup", Category: model.CategoryMeeting, DurationSeconds: 600},
		{UserID: "u1", SessionID: "a", Timestamp: base.Add(10 * time.Minute), App: "Code", Title: "main.go", Category: model.CategoryWorkRelated, DurationSeconds: 300},
		{UserID: "u2", SessionID: "b", Timestamp: base.Add(time.Minute), App: "Safari", Title: "news", Category: model.CategoryBrowser, DurationSeconds: 45},
	}
	for _, r := range rows {
		if err := s.SaveEvents(ctx, []model.CategorizedEvent{r}); err != nil {
			t.Fatalf("SaveEvents: %v", err)
		}
	}

	got, err := s.ListEvents(ctx, "a", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].App != "Code" || !got[0].Timestamp.Equal(base.Add(10*time.Minute)) {
		t.Fatalf("newest first: got %+v", got[0])
	}
	if got[1].Category != model.CategoryMeeting || got[1].DurationSeconds != 600 || got[1].UserID != "u1" {
		t.Fatalf("row round trip: got %+v", got[1])
	}

	all, err := s.ListEvents(ctx, "", 1)
	if err != nil {
		t.Fatalf("ListEvents all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("limit ignored: %d rows", len(all))
	}
}

func TestSaveEventsAndTotals(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	err := s.SaveEvents(ctx, []model.CategorizedEvent{
		{SessionID: "a", Timestamp: base, App: "Code", Title: "x", Category: model.CategoryWorkRelated, DurationSeconds: 100},
		{SessionID: "a", Timestamp: base, App: "Code", Title: "y", Category: model.CategoryWorkRelated, DurationSeconds: 50},
		{SessionID: "a", Timestamp: base, App: "Spotify", Title: "z", Category: model.CategoryDistraction, DurationSeconds: 20},
		{SessionID: "b", Timestamp: base, App: "Code", Title: "w", Category: model.CategoryWorkRelated, DurationSeconds: 7},
	})
	if err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}

	totals, err := s.CategoryTotals(ctx, "a")
	if err != nil {
		t.Fatalf("CategoryTotals: %v", err)
	}
	if totals[model.CategoryWorkRelated] != 150 || totals[model.CategoryDistraction] != 20 {
		t.Fatalf("totals = %v", totals)
	}

	all, err := s.CategoryTotals(ctx, "")
	if err != nil {
		t.Fatalf("CategoryTotals all: %v", err)
	}
	if all[model.CategoryWorkRelated] != 157 {
		t.Fatalf("all work_related = %d, want 157", all[model.CategoryWorkRelated])
	}

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if sessions["a"] != 3 || sessions["b"] != 1 {
		t.Fatalf("sessions = %v", sessions)
	}
}

func TestSaveEventsIsAtomic(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	err := s.SaveEvents(ctx, []model.CategorizedEvent{
		{SessionID: "a", Timestamp: base, App: "zoom.us", Title: "Standup", Category: model.CategoryMeeting, DurationSeconds: 60},
		{SessionID: "a", Timestamp: base.Add(time.Minute), App: "x", Title: "y", Category: model.Category("bogus"), DurationSeconds: 60},
	})
	if err == nil {
		t.Fatal("expected constraint error for unknown category")
	}

	got, err := s.ListEvents(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rows after failed batch = %d, want 0", len(got))
	}
}

func TestSaveEventsEmpty(t *testing.T) {
	s := openTemp(t)
	if err := s.SaveEvents(context.Background(), nil); err != nil {
		t.Fatalf("SaveEvents(nil): %v", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveEvents(ctx, []model.CategorizedEvent{{Timestamp: time.Now(), App: "a", Title: "b", Category: model.CategoryOther, DurationSeconds: 1}}); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.ListEvents(ctx, "", 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen: %d rows, err %v", len(got), err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DefaultPath(); got != "/tmp/xdg-data/mfocus/events.db" {
		t.Fatalf("DefaultPath = %q", got)
	}
}
