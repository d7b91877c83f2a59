package model

import "time"

// EventDetail is one classified event in the whole-window summary.
type EventDetail struct {
	Category    Category `json:"cat"`
	App         string   `json:"app"`
	Title       string   `json:"title"`
	DurationSec float64  `json:"dur_sec"`
}

// TimeBin summarizes one 5-minute slice of the analysis window.
type TimeBin struct {
	Label      string    `json:"time"`
	Start      time.Time `json:"-"`
	End        time.Time `json:"-"`
	Category   Category  `json:"category"`
	App        string    `json:"app"`
	Title      string    `json:"title"`
	EngagedPct float64   `json:"engaged_pct"`

	CategorySec map[Category]float64 `json:"category_sec,omitempty"`
}

// Analysis is the result of analyzing one time window.
type Analysis struct {
	Start             time.Time
	End               time.Time
	TotalDurationSec  float64
	EngagementPct     float64
	CategoryDurations map[Category]float64
	Events            []EventDetail
	AvgFocusSec       float64
	FocusStreaks      int
	Intervals         []TimeBin
}

// EngagedSec returns the whole-window seconds spent in engaged categories.
func (a *Analysis) EngagedSec() float64 {
	return a.CategoryDurations[CategoryMeeting] + a.CategoryDurations[CategoryWorkRelated]
}

// CategorizedEvent is one persisted row for a classified event.
type CategorizedEvent struct {
	UserID          string
	SessionID       string
	Timestamp       time.Time
	App             string
	Title           string
	Category        Category
	DurationSeconds int64
}
