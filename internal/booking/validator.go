// Package booking holds the pure rules applied to a charter request:
// range validation, pricing and the status lifecycle.
package booking

import (
	"errors"

	"regatta/internal/models"
)

var (
	ErrInvalidRange      = errors.New("invalid date range")
	ErrTooShort          = errors.New("booking shorter than minimum stay")
	ErrOverlap           = errors.New("dates overlap an existing booking")
	ErrOutOfSeason       = errors.New("dates fall outside the charter season")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("actor not allowed to perform transition")
	ErrNotFound          = errors.New("not found")
)

// Reason classifies why a candidate range was rejected.
type Reason string

const (
	ReasonInvalidRange Reason = "invalid_range"
	ReasonTooShort     Reason = "too_short"
	ReasonOverlap      Reason = "overlap"
	ReasonOutOfSeason  Reason = "out_of_season"
)

// Err maps the reason to its sentinel error.
func (r Reason) Err() error {
	switch r {
	case ReasonInvalidRange:
		return ErrInvalidRange
	case ReasonTooShort:
		return ErrTooShort
	case ReasonOverlap:
		return ErrOverlap
	case ReasonOutOfSeason:
		return ErrOutOfSeason
	}
	return nil
}

// Result is the outcome of validating a candidate range.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason,omitempty"`
}

func accepted() Result {
	return Result{Accepted: true}
}

func rejected(reason Reason) Result {
	return Result{Reason: reason}
}

// Err returns nil for an accepted result and the matching sentinel otherwise.
func (r Result) Err() error {
	if r.Accepted {
		return nil
	}
	return r.Reason.Err()
}

// MinStayDays is the default minimum charter duration in whole days.
const MinStayDays = 3

// Validator enforces minimum-stay and non-overlap rules on candidate ranges.
type Validator struct {
	minStay int
}

// NewValidator builds a validator. Non-positive minStay falls back to MinStayDays.
func NewValidator(minStay int) *Validator {
	if minStay <= 0 {
		minStay = MinStayDays
	}
	return &Validator{minStay: minStay}
}

// ValidateRange checks a candidate against the yacht's active bookings.
// Rules apply in order: range shape, minimum stay, overlap. The caller must
// re-run this whenever either endpoint changes and again at submission time;
// only the submission-time run against a fresh active set is authoritative.
func (v *Validator) ValidateRange(candidate models.DateRange, active []models.DateRange) Result {
	if !candidate.IsValid() {
		return rejected(ReasonInvalidRange)
	}
	if candidate.Days() < v.minStay {
		return rejected(ReasonTooShort)
	}
	for _, r := range active {
		if candidate.Overlaps(r) {
			return rejected(ReasonOverlap)
		}
	}
	return accepted()
}

// MinStay returns the configured minimum duration in days.
func (v *Validator) MinStay() int {
	return v.minStay
}
