// Package model defines domain types for mfocus window events and engagement metrics.
package model

import (
	"strings"
	"time"
)

// DefaultEventDuration is used for every event whose source record carries no duration.
const DefaultEventDuration = 10 * time.Second

// WindowEvent is one record of which application window was active.
type WindowEvent struct {
	Timestamp time.Time
	Duration  *time.Duration // nil when the source did not report one
	App       string
	Title     string
}

// EffectiveDuration returns the event duration, falling back to DefaultEventDuration.
func (e WindowEvent) EffectiveDuration() time.Duration {
	if e.Duration == nil {
		return DefaultEventDuration
	}
	return *e.Duration
}

// End returns Timestamp + EffectiveDuration.
func (e WindowEvent) End() time.Time {
	return e.Timestamp.Add(e.EffectiveDuration())
}

// AppOrDefault returns the app name, or "Unknown" when empty.
func (e WindowEvent) AppOrDefault() string {
	if e.App == "" {
		return "Unknown"
	}
	return e.App
}

// TitleOrDefault returns the window title, or "Untitled" when empty.
func (e WindowEvent) TitleOrDefault() string {
	if e.Title == "" {
		return "Untitled"
	}
	return e.Title
}

// Category is the activity class assigned to a window event.
type Category string

// The closed set of categories. Nothing outside it is ever returned to a caller.
const (
	CategoryMeeting     Category = "meeting"
	CategoryWorkRelated Category = "work_related"
	CategoryDistraction Category = "distraction"
	CategoryBrowser     Category = "browser"
	CategoryOther       Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMeeting,
	CategoryWorkRelated,
	CategoryDistraction,
	CategoryBrowser,
	CategoryOther,
}

// ParseCategory accepts only an exact closed-set label.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Engaged reports whether the category counts toward engagement.
func (c Category) Engaged() bool {
	return c == CategoryMeeting || c == CategoryWorkRelated
}

// Label returns a human-readable name, e.g. "Work related".
func (c Category) Label() string {
	s := strings.ReplaceAll(string(c), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
