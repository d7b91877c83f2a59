package classify

import (
	"strings"

	"github.com/theirongolddev/mfocus/internal/model"
)

// Rules holds the keyword sets checked before the cache and the oracle.
// Matching is substring-based on lowercased input.
type Rules struct {
	MeetingKeywords []string // checked against app and title
	Browsers        []string // checked against app only
	DevTools        []string // checked against app only
}

// DefaultRules returns the built-in keyword sets.
func DefaultRules() Rules {
	return Rules{
		MeetingKeywords: []string{"zoom", "teams", "meet", "webex", "skype", "facetime"},
		Browsers:        []string{"chrome", "firefox", "safari", "edge", "brave", "opera", "vivaldi"},
		DevTools:        []string{"code", "vscode", "intellij", "pycharm", "sublime", "atom", "terminal"},
	}
}

// WithExtra returns a copy of r with the extra keywords appended. Empty and
// duplicate entries are skipped.
func (r Rules) WithExtra(meeting, browsers, devTools []string) Rules {
	return Rules{
		MeetingKeywords: appendKeywords(r.MeetingKeywords, meeting),
		Browsers:        appendKeywords(r.Browsers, browsers),
		DevTools:        appendKeywords(r.DevTools, devTools),
	}
}

// Match applies the rules in fixed order. app and title must already be lowercased.
func (r Rules) Match(app, title string) (model.Category, bool) {
	if containsAny(app, r.MeetingKeywords) || containsAny(title, r.MeetingKeywords) {
		return model.CategoryMeeting, true
	}
	if containsAny(app, r.Browsers) {
		return model.CategoryBrowser, true
	}
	if containsAny(app, r.DevTools) {
		return model.CategoryWorkRelated, true
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func appendKeywords(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
