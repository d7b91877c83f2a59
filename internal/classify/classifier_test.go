package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

type fakeOracle struct {
	reply string
	err   error
	calls int
	last  string
	block bool
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.last = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func event(app, title string) model.WindowEvent {
	return model.WindowEvent{Timestamp: time.Unix(0, 0).UTC(), App: app, Title: title}
}

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		app, title string
		want       model.Category
	}{
		{"zoom.us", "Zoom Meeting", model.CategoryMeeting},
		{"Microsoft Teams", "Daily Standup", model.CategoryMeeting},
		{"Google Chrome", "Google Meet - standup", model.CategoryMeeting},
		{"Code", "Meeting.js - my-project", model.CategoryMeeting},
		{"Google Chrome", "YouTube - funny cat video", model.CategoryBrowser},
		{"Firefox", "Docs", model.CategoryBrowser},
		{"Visual Studio Code", "main.go", model.CategoryWorkRelated},
		{"iTerm2 Terminal", "zsh", model.CategoryWorkRelated},
		{"PyCharm", "analyzer.py", model.CategoryWorkRelated},
	}

	oracle := &fakeOracle{reply: "distraction"}
	c := New(Options{Oracle: oracle})
	for _, tt := range tests {
		got := c.Classify(context.Background(), event(tt.app, tt.title))
		if got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.app, tt.title, got, tt.want)
		}
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle called %d times for rule-matched events, want 0", oracle.calls)
	}
}

func TestClassify_MeetingBeatsOracleAndCache(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("boom")}
	c := New(Options{Oracle: oracle})
	c.cache[cacheKey{app: "webex", title: "call"}] = model.CategoryDistraction

	if got := c.Classify(context.Background(), event("Webex", "Call")); got != model.CategoryMeeting {
		t.Fatalf("Classify = %q, want meeting", got)
	}
}

func TestClassify_OracleMemoized(t *testing.T) {
	oracle := &fakeOracle{reply: "  Distraction\n"}
	c := New(Options{Oracle: oracle})

	ev := event("Spotify", "Liked Songs")
	first := c.Classify(context.Background(), ev)
	second := c.Classify(context.Background(), event("SPOTIFY", "liked songs"))

	if first != model.CategoryDistraction || second != model.CategoryDistraction {
		t.Fatalf("got %q then %q, want distraction twice", first, second)
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", oracle.calls)
	}
	if c.OracleCalls() != 1 || c.CacheSize() != 1 {
		t.Fatalf("OracleCalls=%d CacheSize=%d, want 1/1", c.OracleCalls(), c.CacheSize())
	}
}

func TestClassify_OracleFailureIsOther(t *testing.T) {
	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"error", &fakeOracle{err: errors.New("connection refused")}},
		{"unknown label", &fakeOracle{reply: "productive"}},
		{"sentence", &fakeOracle{reply: "I think this is work_related"}},
		{"empty", &fakeOracle{reply: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{Oracle: tt.oracle})
			ev := event("Notes", "groceries")
			if got := c.Classify(context.Background(), ev); got != model.CategoryOther {
				t.Fatalf("Classify = %q, want other", got)
			}
			c.Classify(context.Background(), ev)
			if tt.oracle.calls != 1 {
				t.Fatalf("oracle calls = %d, want 1", tt.oracle.calls)
			}
		})
	}
}

func TestClassify_OracleTimeout(t *testing.T) {
	oracle := &fakeOracle{block: true}
	c := New(Options{Oracle: oracle, Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := c.Classify(context.Background(), event("Notes", "todo"))
	if got != model.CategoryOther {
		t.Fatalf("Classify = %q, want other", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Classify took %s, timeout not applied", elapsed)
	}
}

func TestClassify_NoOracle(t *testing.T) {
	c := New(Options{})
	if got := c.Classify(context.Background(), event("Finder", "Downloads")); got != model.CategoryOther {
		t.Fatalf("Classify = %q, want other", got)
	}
}

func TestClassify_PromptCarriesPair(t *testing.T) {
	oracle := &fakeOracle{reply: "other"}
	c := New(Options{Oracle: oracle})
	c.Classify(context.Background(), event("Slack", "#general"))

	for _, want := range []string{"App name: slack", "Window title: #general", "work_related", "browser"} {
		if !strings.Contains(oracle.last, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRules_WithExtra(t *testing.T) {
	r := DefaultRules().WithExtra([]string{" Huddle ", "zoom", ""}, nil, []string{"goland"})

	if cat, ok := r.Match("slack", "huddle with team"); !ok || cat != model.CategoryMeeting {
		t.Fatalf("Match(huddle) = %q, %v; want meeting", cat, ok)
	}
	if cat, ok := r.Match("goland", "main.go"); !ok || cat != model.CategoryWorkRelated {
		t.Fatalf("Match(goland) = %q, %v; want work_related", cat, ok)
	}
	count := 0
	for _, kw := range r.MeetingKeywords {
		if kw == "zoom" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("zoom appears %d times, want 1", count)
	}
}

func TestParseResponse(t *testing.T) {
	for _, c := range model.Categories {
		if got, ok := ParseResponse(" " + strings.ToUpper(string(c)) + "\n"); !ok || got != c {
			t.Errorf("ParseResponse(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseResponse("'meeting'"); ok {
		t.Error("quoted label accepted")
	}
}
