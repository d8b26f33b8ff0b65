package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"regatta/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestValidator_ValidateRange(t *testing.T) {
	v := NewValidator(0)

	// Existing confirmed charter June 10-15.
	active := []models.DateRange{
		models.NewDateRange(day(2024, time.June, 10), day(2024, time.June, 15)),
	}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		accepted bool
		reason   Reason
	}{
		{
			name:   "missing start",
			end:    day(2024, time.June, 20),
			reason: ReasonInvalidRange,
		},
		{
			name:   "missing end",
			start:  day(2024, time.June, 16),
			reason: ReasonInvalidRange,
		},
		{
			name:   "end before start",
			start:  day(2024, time.June, 20),
			end:    day(2024, time.June, 16),
			reason: ReasonInvalidRange,
		},
		{
			name:   "end equals start",
			start:  day(2024, time.June, 16),
			end:    day(2024, time.June, 16),
			reason: ReasonInvalidRange,
		},
		{
			name:   "one day is too short",
			start:  day(2024, time.June, 1),
			end:    day(2024, time.June, 2),
			reason: ReasonTooShort,
		},
		{
			name:   "two days is too short",
			start:  day(2024, time.June, 1),
			end:    day(2024, time.June, 3),
			reason: ReasonTooShort,
		},
		{
			name:     "exactly three days passes",
			start:    day(2024, time.June, 20),
			end:      day(2024, time.June, 23),
			accepted: true,
		},
		{
			name:   "touching the existing end date is an overlap",
			start:  day(2024, time.June, 14),
			end:    day(2024, time.June, 18),
			reason: ReasonOverlap,
		},
		{
			name:   "touching the existing start date is an overlap",
			start:  day(2024, time.June, 6),
			end:    day(2024, time.June, 10),
			reason: ReasonOverlap,
		},
		{
			name:     "day after the existing booking is accepted",
			start:    day(2024, time.June, 16),
			end:      day(2024, time.June, 20),
			accepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateRange(models.DateRange{Start: tt.start, End: tt.end}, active)
			assert.Equal(t, tt.accepted, result.Accepted)
			if tt.accepted {
				assert.Empty(t, result.Reason)
				assert.NoError(t, result.Err())
			} else {
				assert.Equal(t, tt.reason, result.Reason)
				assert.Error(t, result.Err())
			}
		})
	}
}

func TestValidator_ShortRangeAlwaysTooShort(t *testing.T) {
	v := NewValidator(3)

	// Minimum stay rejects even with no competing bookings.
	result := v.ValidateRange(models.NewDateRange(day(2024, time.June, 1), day(2024, time.June, 2)), nil)
	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonTooShort, result.Reason)
	assert.ErrorIs(t, result.Err(), ErrTooShort)
}

func TestValidator_AcceptedNeverOverlapsActiveSet(t *testing.T) {
	v := NewValidator(3)

	active := []models.DateRange{
		models.NewDateRange(day(2024, time.July, 1), day(2024, time.July, 5)),
		models.NewDateRange(day(2024, time.July, 10), day(2024, time.July, 14)),
		models.NewDateRange(day(2024, time.August, 1), day(2024, time.August, 20)),
	}

	candidates := []models.DateRange{
		models.NewDateRange(day(2024, time.July, 6), day(2024, time.July, 9)),
		models.NewDateRange(day(2024, time.July, 15), day(2024, time.July, 31)),
		models.NewDateRange(day(2024, time.August, 21), day(2024, time.August, 25)),
	}

	for _, c := range candidates {
		result := v.ValidateRange(c, active)
		assert.True(t, result.Accepted, "range %v should be accepted", c)
		for _, a := range active {
			assert.False(t, c.Overlaps(a))
		}
	}
}

func TestValidator_CustomMinStay(t *testing.T) {
	v := NewValidator(7)
	assert.Equal(t, 7, v.MinStay())

	result := v.ValidateRange(models.NewDateRange(day(2024, time.June, 1), day(2024, time.June, 5)), nil)
	assert.Equal(t, ReasonTooShort, result.Reason)

	result = v.ValidateRange(models.NewDateRange(day(2024, time.June, 1), day(2024, time.June, 8)), nil)
	assert.True(t, result.Accepted)
}
