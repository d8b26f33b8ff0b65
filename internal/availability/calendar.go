// Package availability decides per-date bookability for a yacht.
package availability

import (
	"time"

	"regatta/internal/models"
)

// Unavailability reasons reported in date grids.
const (
	ReasonPast      = "past"
	ReasonOffSeason = "off_season"
	ReasonBooked    = "booked"
)

// SeasonWindow is the span of calendar months open for charter.
type SeasonWindow struct {
	First time.Month
	Last  time.Month
}

// DefaultSeason covers May through November.
var DefaultSeason = SeasonWindow{First: time.May, Last: time.November}

// Contains reports whether m falls inside the window.
func (w SeasonWindow) Contains(m time.Month) bool {
	return m >= w.First && m <= w.Last
}

// DateStatus is the bookability verdict for a single date.
type DateStatus struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Calendar evaluates bookability against a season window and "today".
// The now func is injected so tests can pin the clock.
type Calendar struct {
	season SeasonWindow
	now    func() time.Time
}

// NewCalendar builds a calendar. A zero season falls back to DefaultSeason;
// a nil now falls back to time.Now.
func NewCalendar(season SeasonWindow, now func() time.Time) *Calendar {
	if season.First == 0 || season.Last == 0 {
		season = DefaultSeason
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{season: season, now: now}
}

// IsDateBookable applies the per-date rules in order: past date, off-season
// month, then conflict with any active booking interval. The active set must
// be the yacht's current pending+confirmed bookings; the verdict is only as
// fresh as that snapshot.
func (c *Calendar) IsDateBookable(date time.Time, active []models.DateRange) bool {
	available, _ := c.evaluate(date, active)
	return available
}

func (c *Calendar) evaluate(date time.Time, active []models.DateRange) (bool, string) {
	d := models.Day(date)

	if d.Before(models.Day(c.now())) {
		return false, ReasonPast
	}
	if !c.season.Contains(d.Month()) {
		return false, ReasonOffSeason
	}
	for _, r := range active {
		if r.Contains(d) {
			return false, ReasonBooked
		}
	}
	return true, ""
}

// Grid returns the per-date verdict for every date in [start, end].
func (c *Calendar) Grid(start, end time.Time, active []models.DateRange) []DateStatus {
	grid := make([]DateStatus, 0)
	for d := models.Day(start); !d.After(models.Day(end)); d = d.AddDate(0, 0, 1) {
		available, reason := c.evaluate(d, active)
		grid = append(grid, DateStatus{
			Date:      d.Format("2006-01-02"),
			Available: available,
			Reason:    reason,
		})
	}
	return grid
}

// IsRangeBookable checks every date of the candidate range. It is the
// date-level gate that runs alongside the range validator at submission.
func (c *Calendar) IsRangeBookable(candidate models.DateRange, active []models.DateRange) bool {
	for d := candidate.Start; !d.After(candidate.End); d = d.AddDate(0, 0, 1) {
		if !c.IsDateBookable(d, active) {
			return false
		}
	}
	return true
}
