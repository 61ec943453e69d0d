package model

import "time"

// DayLayout is the date-only format used for login markers and the
// days-together counter.
const DayLayout = "2006-01-02"

// Day returns the calendar day of t in t's own location. No time zone
// normalization is applied, so two participants in different zones can
// disagree about which day it is.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// StreakCounter counts the distinct calendar days on which both
// participants logged in.
type StreakCounter struct {
	// Count is the number of days together.
	Count int `json:"count" yaml:"count"`

	// StartDate is the day of the very first login by anyone.
	// It is set once and never changes.
	StartDate *string `json:"start_date" yaml:"start_date"`

	// LastUpdate is the last day Count was incremented.
	LastUpdate *string `json:"last_update" yaml:"last_update"`
}

// Started reports whether any login has ever been recorded.
func (c StreakCounter) Started() bool {
	return c.StartDate != nil && *c.StartDate != ""
}

// CountedOn reports whether Count was already incremented on day.
func (c StreakCounter) CountedOn(day string) bool {
	return c.LastUpdate != nil && *c.LastUpdate == day
}
