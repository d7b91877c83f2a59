// Package classify assigns activity categories to window events.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

// DefaultOracleTimeout bounds one oracle call when the caller sets none.
const DefaultOracleTimeout = 20 * time.Second

// ErrInvalidLabel is returned by the oracle path when the response is outside the closed set.
var ErrInvalidLabel = errors.New("classify: oracle returned an unknown label")

// Oracle is a free-text classification service consulted on cache misses.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type cacheKey struct {
	app   string
	title string
}

// Classifier maps events to categories. A Classifier owns its cache, so one
// instance must serve exactly one analysis run.
type Classifier struct {
	rules   Rules
	oracle  Oracle
	timeout time.Duration
	logger  *slog.Logger

	cache       map[cacheKey]model.Category
	oracleCalls int
}

// Options configures a Classifier.
type Options struct {
	Rules   Rules
	Oracle  Oracle // nil disables the fallback; unmatched events become "other"
	Timeout time.Duration
	Logger  *slog.Logger
}

// New returns a Classifier with an empty cache.
func New(opts Options) *Classifier {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOracleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rules.MeetingKeywords == nil && opts.Rules.Browsers == nil && opts.Rules.DevTools == nil {
		opts.Rules = DefaultRules()
	}
	return &Classifier{
		rules:   opts.Rules,
		oracle:  opts.Oracle,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		cache:   make(map[cacheKey]model.Category),
	}
}

// Classify returns the category for ev. It always succeeds: oracle failures,
// timeouts and out-of-set replies are logged and mapped to CategoryOther.
// Failed pairs are memoized as CategoryOther like successful ones, so a pair
// is never retried within the run and costs at most one oracle call.
func (c *Classifier) Classify(ctx context.Context, ev model.WindowEvent) model.Category {
	app := strings.ToLower(ev.AppOrDefault())
	title := strings.ToLower(ev.TitleOrDefault())

	if cat, ok := c.rules.Match(app, title); ok {
		return cat
	}

	key := cacheKey{app: app, title: title}
	if cat, ok := c.cache[key]; ok {
		return cat
	}

	cat, err := c.ask(ctx, app, title)
	if err != nil {
		c.logger.Warn("oracle classification failed",
			"app", app, "title", title, "error", err)
		cat = model.CategoryOther
	}
	c.cache[key] = cat
	return cat
}

// OracleCalls reports how many times the oracle was consulted.
func (c *Classifier) OracleCalls() int {
	return c.oracleCalls
}

// CacheSize reports the number of memoized pairs.
func (c *Classifier) CacheSize() int {
	return len(c.cache)
}

func (c *Classifier) ask(ctx context.Context, app, title string) (model.Category, error) {
	if c.oracle == nil {
		return model.CategoryOther, nil
	}
	c.oracleCalls++

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.oracle.Complete(ctx, BuildPrompt(app, title))
	if err != nil {
		return "", fmt.Errorf("oracle: %w", err)
	}
	cat, ok := ParseResponse(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, truncate(raw, 40))
	}
	return cat, nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
