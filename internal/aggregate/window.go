// Package aggregate computes time-windowed hour totals and membership views
// over work entries. Every function is pure; callers pass in the collections.
package aggregate

import (
	"time"

	"workhours/internal/model"
)

// Window is a closed, calendar-aligned time range.
// Start is 00:00:00.000 of the first day and End is 23:59:59.999 of the last day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func span(start, next time.Time) Window {
	return Window{Start: start, End: next.Add(-time.Millisecond)}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Day is the window covering the calendar day of date, in date's location
func Day(date time.Time) Window {
	start := midnight(date)
	return span(start, start.AddDate(0, 0, 1))
}

// Week is the seven-day window containing now that begins on weekStart.
// With weekStart = time.Sunday it runs Sunday 00:00:00.000 to Saturday 23:59:59.999.
func Week(now time.Time, weekStart time.Weekday) Window {
	back := (int(now.Weekday()) - int(weekStart) + 7) % 7
	start := midnight(now).AddDate(0, 0, -back)
	return span(start, start.AddDate(0, 0, 7))
}

// Month is the window covering a calendar month in loc
func Month(year int, month time.Month, loc *time.Location) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return span(start, start.AddDate(0, 1, 0))
}

// Year is the window covering a calendar year in loc
func Year(year int, loc *time.Location) Window {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return span(start, start.AddDate(1, 0, 0))
}

// Contains reports whether t falls inside the window, bounds included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ContainsDate parses a stored entry date in the window's location and reports
// whether it falls inside. Unparseable dates never match.
func (w Window) ContainsDate(date string) bool {
	t, ok := ParseDate(date, w.Start.Location())
	return ok && w.Contains(t)
}

// ParseDate parses a stored WorkEntry date. Plain YYYY-MM-DD values are read as
// local midnight in loc without any timezone normalization; full RFC 3339
// timestamps are converted into loc.
func ParseDate(date string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(model.DateLayout, date, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}
