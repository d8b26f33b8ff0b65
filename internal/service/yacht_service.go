package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"regatta/internal/booking"
	"regatta/internal/database"
	"regatta/internal/events"
	"regatta/internal/models"
)

// Inventory is the storage surface for the yacht fleet.
type Inventory interface {
	GetYachts() []models.YachtListing
	GetYachtByID(ctx context.Context, id string) (*models.YachtListing, error)
	CreateYacht(ctx context.Context, y *models.YachtListing) error
	UpdateYacht(ctx context.Context, y *models.YachtListing) error
	DeactivateYacht(ctx context.Context, id string) error
}

// YachtService manages the charter fleet. Write operations are admin-only;
// the HTTP layer enforces the role before calling in.
type YachtService struct {
	inv    Inventory
	bus    EventPublisher
	cache  GridCache
	logger *zerolog.Logger
}

func NewYachtService(inv Inventory, bus EventPublisher, gridCache GridCache, logger *zerolog.Logger) *YachtService {
	return &YachtService{inv: inv, bus: bus, cache: gridCache, logger: logger}
}

// ListYachts returns the active fleet.
func (s *YachtService) ListYachts(ctx context.Context) []models.YachtListing {
	return s.inv.GetYachts()
}

func (s *YachtService) GetYacht(ctx context.Context, id string) (*models.YachtListing, error) {
	y, err := s.inv.GetYachtByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	return y, nil
}

func (s *YachtService) CreateYacht(ctx context.Context, y *models.YachtListing) error {
	if y.ID == "" {
		y.ID = uuid.NewString()
	}
	if err := s.inv.CreateYacht(ctx, y); err != nil {
		return fmt.Errorf("creating yacht: %w", err)
	}
	s.publishChange(ctx, y.ID, "created")
	return nil
}

func (s *YachtService) UpdateYacht(ctx context.Context, y *models.YachtListing) error {
	if err := s.inv.UpdateYacht(ctx, y); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return booking.ErrNotFound
		}
		return fmt.Errorf("updating yacht: %w", err)
	}
	s.publishChange(ctx, y.ID, "updated")
	return nil
}

func (s *YachtService) DeactivateYacht(ctx context.Context, id string) error {
	if err := s.inv.DeactivateYacht(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return booking.ErrNotFound
		}
		return fmt.Errorf("deactivating yacht: %w", err)
	}
	s.publishChange(ctx, id, "deactivated")
	return nil
}

func (s *YachtService) publishChange(ctx context.Context, yachtID, action string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, yachtID)
	}
	if err := s.bus.PublishJSON(events.TypeYachtChanged, map[string]string{
		"yacht_id": yachtID,
		"action":   action,
	}); err != nil {
		s.logger.Warn().Err(err).Str("yacht_id", yachtID).Msg("failed to publish yacht.changed")
	}
	s.logger.Info().Str("yacht_id", yachtID).Str("action", action).Msg("yacht " + action)
}
