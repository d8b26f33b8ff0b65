// Package service wires the charter rules to storage, cache and events.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"regatta/internal/availability"
	"regatta/internal/booking"
	"regatta/internal/cache"
	"regatta/internal/database"
	"regatta/internal/events"
	"regatta/internal/metrics"
	"regatta/internal/models"
)

// Repository is the storage surface the booking service depends on.
type Repository interface {
	ListActiveBookings(ctx context.Context, yachtID string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, version int64, status models.Status) error
	ListBookings(ctx context.Context, filter database.BookingFilter) ([]models.Booking, error)
	GetYachtByID(ctx context.Context, id string) (*models.YachtListing, error)
}

// EventPublisher decouples the service from the concrete bus.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// GridCache is the read-through cache for availability grids.
type GridCache interface {
	GetGrid(ctx context.Context, yachtID, start, end string) ([]availability.DateStatus, bool)
	SetGrid(ctx context.Context, yachtID, start, end string, grid []availability.DateStatus)
	Invalidate(ctx context.Context, yachtID string)
}

// CreateBookingRequest carries the customer input for a new charter.
type CreateBookingRequest struct {
	YachtID       string
	UserID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
}

type BookingService struct {
	repo      Repository
	bus       EventPublisher
	cache     GridCache
	validator *booking.Validator
	calendar  *availability.Calendar
	lifecycle *booking.Lifecycle
	logger    *zerolog.Logger
}

func NewBookingService(
	repo Repository,
	bus EventPublisher,
	gridCache GridCache,
	validator *booking.Validator,
	calendar *availability.Calendar,
	logger *zerolog.Logger,
) *BookingService {
	if gridCache == nil {
		gridCache = cache.New(nil, 0)
	}
	return &BookingService{
		repo:      repo,
		bus:       bus,
		cache:     gridCache,
		validator: validator,
		calendar:  calendar,
		lifecycle: booking.NewLifecycle(),
		logger:    logger,
	}
}

const dateLayout = "2006-01-02"

// CreateBooking validates the requested range, prices it and persists a new
// pending booking. The storage layer re-checks the overlap inside the insert
// transaction, so a concurrent winner surfaces here as ErrOverlap.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	yacht, err := s.repo.GetYachtByID(ctx, req.YachtID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("loading yacht: %w", err)
	}
	if !yacht.IsActive {
		return nil, booking.ErrNotFound
	}

	candidate := models.NewDateRange(req.StartDate, req.EndDate)

	active, err := s.activeRanges(ctx, req.YachtID)
	if err != nil {
		return nil, err
	}

	if result := s.validator.ValidateRange(candidate, active); !result.Accepted {
		metrics.IncValidationRejected(string(result.Reason))
		return nil, result.Err()
	}
	// Shape, stay and overlap passed; anything the calendar still rejects
	// is a past or off-season date.
	if !s.calendar.IsRangeBookable(candidate, nil) {
		metrics.IncValidationRejected(string(booking.ReasonOutOfSeason))
		return nil, booking.ErrOutOfSeason
	}

	b := &models.Booking{
		ID:            uuid.NewString(),
		YachtID:       yacht.ID,
		YachtName:     yacht.Name,
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartDate:     candidate.Start,
		EndDate:       candidate.End,
		TotalPrice:    booking.Quote(candidate, yacht.PricePerDay),
		Status:        models.StatusPending,
	}

	if err = s.repo.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			metrics.IncValidationRejected(string(booking.ReasonOverlap))
			return nil, booking.ErrOverlap
		}
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	metrics.IncBookingCreated()
	s.cache.Invalidate(ctx, b.YachtID)
	if err = s.bus.PublishJSON(events.TypeBookingCreated, b); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("failed to publish booking.created")
	}

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("yacht_id", b.YachtID).
		Time("start", b.StartDate).
		Time("end", b.EndDate).
		Float64("total_price", b.TotalPrice).
		Msg("booking created")

	return b, nil
}

// TransitionStatus moves a booking through its lifecycle on behalf of an
// actor. Customers may only cancel their own bookings; admins may apply any
// transition the lifecycle allows.
func (s *BookingService) TransitionStatus(ctx context.Context, id string, to models.Status, actorID string, role models.Role) (*models.Booking, error) {
	if !to.Valid() {
		return nil, booking.ErrInvalidTransition
	}

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("loading booking: %w", err)
	}

	if role == models.RoleCustomer && b.UserID != actorID {
		return nil, booking.ErrForbidden
	}
	if err = s.lifecycle.Authorize(b.Status, to, role); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateBookingStatus(ctx, id, b.Version, to); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("updating booking status: %w", err)
	}

	from := b.Status
	b.Status = to
	b.Version++
	b.LastUpdated = time.Now()

	switch {
	case to == models.StatusCancelled:
		metrics.IncBookingCancelled()
	case role == models.RoleAdmin:
		metrics.IncAdminDecision(string(to))
	}
	s.cache.Invalidate(ctx, b.YachtID)
	if err = s.bus.PublishJSON(events.TypeBookingStatusChanged, map[string]interface{}{
		"booking_id": b.ID,
		"yacht_id":   b.YachtID,
		"from":       from,
		"to":         to,
		"actor_id":   actorID,
		"role":       role,
	}); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("failed to publish booking.status_changed")
	}

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("role", string(role)).
		Msg("booking status changed")

	return b, nil
}

// ValidateRange runs the booking rules against a candidate range without
// persisting anything. Used by the pre-flight validation endpoint.
func (s *BookingService) ValidateRange(ctx context.Context, yachtID string, start, end time.Time) (booking.Result, error) {
	active, err := s.activeRanges(ctx, yachtID)
	if err != nil {
		return booking.Result{}, err
	}
	result := s.validator.ValidateRange(models.NewDateRange(start, end), active)
	if !result.Accepted {
		metrics.IncValidationRejected(string(result.Reason))
	}
	return result, nil
}

// AvailabilityGrid returns the per-date bookability verdicts for a window,
// read through the cache when one is configured.
func (s *BookingService) AvailabilityGrid(ctx context.Context, yachtID string, start, end time.Time) ([]availability.DateStatus, error) {
	if _, err := s.repo.GetYachtByID(ctx, yachtID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, fmt.Errorf("loading yacht: %w", err)
	}

	startKey := models.Day(start).Format(dateLayout)
	endKey := models.Day(end).Format(dateLayout)
	if grid, ok := s.cache.GetGrid(ctx, yachtID, startKey, endKey); ok {
		return grid, nil
	}

	active, err := s.activeRanges(ctx, yachtID)
	if err != nil {
		return nil, err
	}

	grid := s.calendar.Grid(start, end, active)
	s.cache.SetGrid(ctx, yachtID, startKey, endKey, grid)
	return grid, nil
}

// IsDateBookable reports whether a single date can start or cover a charter.
func (s *BookingService) IsDateBookable(ctx context.Context, yachtID string, date time.Time) (bool, error) {
	active, err := s.activeRanges(ctx, yachtID)
	if err != nil {
		return false, err
	}
	return s.calendar.IsDateBookable(date, active), nil
}

// ListBookings returns bookings visible to the actor. Customers are pinned
// to their own bookings regardless of the requested filter.
func (s *BookingService) ListBookings(ctx context.Context, filter database.BookingFilter, actorID string, role models.Role) ([]models.Booking, error) {
	if role == models.RoleCustomer {
		filter.UserID = actorID
	}
	return s.repo.ListBookings(ctx, filter)
}

// GetBooking loads one booking, enforcing that customers only see their own.
func (s *BookingService) GetBooking(ctx context.Context, id string, actorID string, role models.Role) (*models.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	if role == models.RoleCustomer && b.UserID != actorID {
		return nil, booking.ErrForbidden
	}
	return b, nil
}

func (s *BookingService) activeRanges(ctx context.Context, yachtID string) ([]models.DateRange, error) {
	bookings, err := s.repo.ListActiveBookings(ctx, yachtID)
	if err != nil {
		return nil, fmt.Errorf("listing active bookings: %w", err)
	}
	ranges := make([]models.DateRange, 0, len(bookings))
	for _, b := range bookings {
		ranges = append(ranges, b.Range())
	}
	return ranges, nil
}
