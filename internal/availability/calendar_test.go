package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"regatta/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// fixedNow pins "today" to 2024-06-01 for deterministic past-date checks.
func fixedNow() time.Time {
	return day(2024, time.June, 1)
}

func TestCalendar_IsDateBookable(t *testing.T) {
	cal := NewCalendar(DefaultSeason, fixedNow)

	active := []models.DateRange{
		models.NewDateRange(day(2024, time.June, 10), day(2024, time.June, 15)),
	}

	tests := []struct {
		name     string
		date     time.Time
		bookable bool
	}{
		{"past date", day(2024, time.May, 20), false},
		{"today is bookable", day(2024, time.June, 1), true},
		{"january is off-season regardless of bookings", day(2025, time.January, 10), false},
		{"april is off-season", day(2025, time.April, 30), false},
		{"december is off-season", day(2024, time.December, 1), false},
		{"may is in season", day(2025, time.May, 1), true},
		{"november is in season", day(2024, time.November, 30), true},
		{"date inside active booking", day(2024, time.June, 12), false},
		{"booking start date blocked", day(2024, time.June, 10), false},
		{"booking end date blocked", day(2024, time.June, 15), false},
		{"day after booking is free", day(2024, time.June, 16), true},
		{"free in-season date", day(2024, time.July, 4), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bookable, cal.IsDateBookable(tt.date, active))
		})
	}
}

func TestCalendar_PastDateNeverBookable(t *testing.T) {
	cal := NewCalendar(DefaultSeason, fixedNow)

	// No bookings at all: the past rule alone must block.
	assert.False(t, cal.IsDateBookable(day(2024, time.May, 31), nil))
	assert.False(t, cal.IsDateBookable(day(2023, time.July, 1), nil))
}

func TestCalendar_Grid(t *testing.T) {
	cal := NewCalendar(DefaultSeason, fixedNow)

	active := []models.DateRange{
		models.NewDateRange(day(2024, time.June, 3), day(2024, time.June, 4)),
	}

	grid := cal.Grid(day(2024, time.June, 2), day(2024, time.June, 5), active)
	assert.Len(t, grid, 4)

	assert.True(t, grid[0].Available)
	assert.Empty(t, grid[0].Reason)

	assert.False(t, grid[1].Available)
	assert.Equal(t, ReasonBooked, grid[1].Reason)
	assert.False(t, grid[2].Available)
	assert.Equal(t, ReasonBooked, grid[2].Reason)

	assert.True(t, grid[3].Available)
	assert.Equal(t, "2024-06-05", grid[3].Date)
}

func TestCalendar_GridReasons(t *testing.T) {
	cal := NewCalendar(DefaultSeason, fixedNow)

	grid := cal.Grid(day(2024, time.April, 29), day(2024, time.May, 2), nil)
	assert.Len(t, grid, 4)

	// April 29-30 are both past and off-season; past wins since rules apply in order.
	assert.Equal(t, ReasonPast, grid[0].Reason)
	assert.Equal(t, ReasonPast, grid[1].Reason)
	// May 1 is still before the pinned today.
	assert.Equal(t, ReasonPast, grid[2].Reason)

	offSeason := cal.Grid(day(2024, time.December, 1), day(2024, time.December, 1), nil)
	assert.Equal(t, ReasonOffSeason, offSeason[0].Reason)
}

func TestCalendar_IsRangeBookable(t *testing.T) {
	cal := NewCalendar(DefaultSeason, fixedNow)

	active := []models.DateRange{
		models.NewDateRange(day(2024, time.June, 10), day(2024, time.June, 15)),
	}

	free := models.NewDateRange(day(2024, time.June, 16), day(2024, time.June, 20))
	assert.True(t, cal.IsRangeBookable(free, active))

	blocked := models.NewDateRange(day(2024, time.June, 14), day(2024, time.June, 18))
	assert.False(t, cal.IsRangeBookable(blocked, active))

	january := models.NewDateRange(day(2025, time.January, 10), day(2025, time.January, 15))
	assert.False(t, cal.IsRangeBookable(january, nil))
}

func TestSeasonWindow_Contains(t *testing.T) {
	assert.False(t, DefaultSeason.Contains(time.April))
	assert.True(t, DefaultSeason.Contains(time.May))
	assert.True(t, DefaultSeason.Contains(time.November))
	assert.False(t, DefaultSeason.Contains(time.December))
	assert.False(t, DefaultSeason.Contains(time.January))
}
