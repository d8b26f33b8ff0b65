package models

import "time"

// DateRange is a closed interval [Start, End] at day granularity.
// Time-of-day is discarded on construction.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDateRange builds a day-normalized range.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// IsValid reports whether the range has both endpoints and Start < End.
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.Start.Before(r.End)
}

// Overlaps checks two ranges for conflict.
// Boundaries are inclusive: touching endpoints count as overlapping.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

// Contains checks whether date falls within [Start, End].
func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the whole-day duration End - Start.
// A range covering 4 calendar dates inclusive has Days() == 3.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}
