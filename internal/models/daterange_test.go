package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestDay_DiscardsTimeOfDay(t *testing.T) {
	noon := time.Date(2026, 6, 15, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, day(2026, 6, 15), Day(noon))
}

func TestDateRange_Overlaps(t *testing.T) {
	existing := NewDateRange(day(2026, 6, 15), day(2026, 6, 20))

	tests := []struct {
		name    string
		request DateRange
		overlap bool
	}{
		{
			name:    "request before existing",
			request: NewDateRange(day(2026, 6, 10), day(2026, 6, 14)),
			overlap: false,
		},
		{
			name:    "request after existing",
			request: NewDateRange(day(2026, 6, 21), day(2026, 6, 25)),
			overlap: false,
		},
		{
			name:    "request starts before, ends during",
			request: NewDateRange(day(2026, 6, 13), day(2026, 6, 16)),
			overlap: true,
		},
		{
			name:    "request starts during, ends after",
			request: NewDateRange(day(2026, 6, 19), day(2026, 6, 25)),
			overlap: true,
		},
		{
			name:    "request contained within existing",
			request: NewDateRange(day(2026, 6, 16), day(2026, 6, 18)),
			overlap: true,
		},
		{
			name:    "request contains existing",
			request: NewDateRange(day(2026, 6, 10), day(2026, 6, 25)),
			overlap: true,
		},
		{
			name:    "touching endpoints count as overlap",
			request: NewDateRange(day(2026, 6, 20), day(2026, 6, 25)),
			overlap: true,
		},
		{
			name:    "day after existing ends",
			request: NewDateRange(day(2026, 6, 21), day(2026, 6, 24)),
			overlap: false,
		},
		{
			name:    "exact same range",
			request: NewDateRange(day(2026, 6, 15), day(2026, 6, 20)),
			overlap: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlap, existing.Overlaps(tt.request))

			// Overlap must be symmetric.
			assert.Equal(t, tt.overlap, tt.request.Overlaps(existing))
		})
	}
}

func TestDateRange_OverlapsSelf(t *testing.T) {
	r := NewDateRange(day(2026, 7, 1), day(2026, 7, 5))
	assert.True(t, r.Overlaps(r))
}

func TestDateRange_Contains(t *testing.T) {
	r := NewDateRange(day(2026, 6, 15), day(2026, 6, 20))

	tests := []struct {
		name     string
		date     time.Time
		contains bool
	}{
		{"date at start", day(2026, 6, 15), true},
		{"date at end", day(2026, 6, 20), true},
		{"date in middle", day(2026, 6, 17), true},
		{"date before", day(2026, 6, 14), false},
		{"date after", day(2026, 6, 21), false},
		{"time of day ignored", time.Date(2026, 6, 20, 23, 59, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.contains, r.Contains(tt.date))
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		days int
	}{
		{"single night", NewDateRange(day(2026, 6, 1), day(2026, 6, 2)), 1},
		{"three days minimum stay", NewDateRange(day(2026, 6, 1), day(2026, 6, 4)), 3},
		{"four day charter", NewDateRange(day(2024, 6, 16), day(2024, 6, 20)), 4},
		{"zero length", NewDateRange(day(2026, 6, 1), day(2026, 6, 1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, tt.r.Days())
		})
	}
}

func TestDateRange_IsValid(t *testing.T) {
	assert.True(t, NewDateRange(day(2026, 6, 1), day(2026, 6, 4)).IsValid())
	assert.False(t, NewDateRange(day(2026, 6, 4), day(2026, 6, 1)).IsValid())
	assert.False(t, NewDateRange(day(2026, 6, 1), day(2026, 6, 1)).IsValid())
	assert.False(t, DateRange{End: day(2026, 6, 1)}.IsValid())
	assert.False(t, DateRange{Start: day(2026, 6, 1)}.IsValid())
}
