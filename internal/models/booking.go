package models

import "time"

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known booking status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a booking in this status counts against availability.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses are the statuses that block other bookings.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Role identifies who is acting on a booking.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Booking represents a yacht charter reservation.
type Booking struct {
	ID            string    `json:"id"`
	YachtID       string    `json:"yacht_id"`
	YachtName     string    `json:"yacht_name"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TotalPrice    float64   `json:"total_price"` // frozen at creation time
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
	Version       int64     `json:"version"`
}

// Range returns the booking's date interval.
func (b *Booking) Range() DateRange {
	return NewDateRange(b.StartDate, b.EndDate)
}

// OverlapsWith checks if this booking's dates overlap with another booking.
// Boundaries are inclusive: a booking ending on day N conflicts with one
// starting on day N (checkout/checkin buffer).
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.Range().Overlaps(other.Range())
}

// ContainsDate checks if the booking covers a specific calendar date.
func (b *Booking) ContainsDate(date time.Time) bool {
	return b.Range().Contains(date)
}
