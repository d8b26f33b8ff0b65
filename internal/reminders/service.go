// Package reminders notifies customers about upcoming charter departures.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"regatta/internal/metrics"
	"regatta/internal/models"
)

// Store is the booking storage surface the reminder loop needs.
type Store interface {
	GetUpcomingCharters(ctx context.Context, within time.Duration) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// Notifier delivers a departure reminder to the customer.
type Notifier interface {
	SendReminder(ctx context.Context, b models.Booking) error
}

// Config holds configuration for the reminder service.
type Config struct {
	// CheckInterval is how often to scan for upcoming charters.
	// Default: 1 hour.
	CheckInterval time.Duration

	// DaysBefore is how many days before departure to remind.
	// Default: 2.
	DaysBefore int

	// MaxConcurrentNotifications limits parallel sends. Default: 10.
	MaxConcurrentNotifications int

	// SendRate and SendBurst throttle the notifier.
	SendRate  float64
	SendBurst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CheckInterval:              time.Hour,
		DaysBefore:                 2,
		MaxConcurrentNotifications: 10,
		SendRate:                   20,
		SendBurst:                  30,
	}
}

// Service scans for confirmed charters nearing departure and sends each
// customer a single reminder.
type Service struct {
	config   *Config
	store    Store
	notifier Notifier
	limiter  *rate.Limiter
	logger   *zerolog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

func NewService(config *Config, store Store, notifier Notifier, logger *zerolog.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = time.Hour
	}
	if config.DaysBefore <= 0 {
		config.DaysBefore = 2
	}
	if config.MaxConcurrentNotifications <= 0 {
		config.MaxConcurrentNotifications = 10
	}
	if config.SendRate <= 0 {
		config.SendRate = 20
	}
	if config.SendBurst <= 0 {
		config.SendBurst = 30
	}

	return &Service{
		config:   config,
		store:    store,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(config.SendRate), config.SendBurst),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reminder check loop.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Dur("check_interval", s.config.CheckInterval).
		Int("days_before", s.config.DaysBefore).
		Msg("reminder service started")
}

// Stop gracefully stops the reminder service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info().Msg("reminder service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	// Run immediately on start
	s.checkAndSend()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkAndSend()
		}
	}
}

func (s *Service) checkAndSend() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	lookAhead := time.Duration(s.config.DaysBefore) * 24 * time.Hour
	upcoming, err := s.store.GetUpcomingCharters(ctx, lookAhead)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load upcoming charters")
		return
	}
	if len(upcoming) == 0 {
		return
	}

	s.logger.Debug().Int("count", len(upcoming)).Msg("charters due for reminders")

	sem := make(chan struct{}, s.config.MaxConcurrentNotifications)
	var wg sync.WaitGroup

	for _, b := range upcoming {
		wg.Add(1)
		sem <- struct{}{}

		go func(b models.Booking) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.sendReminder(ctx, b); err != nil {
				s.logger.Error().Err(err).
					Str("booking_id", b.ID).
					Str("user_id", b.UserID).
					Msg("failed to send reminder")
			}
		}(b)
	}

	wg.Wait()
}

func (s *Service) sendReminder(ctx context.Context, b models.Booking) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := s.notifier.SendReminder(ctx, b); err != nil {
		return err
	}

	// The notification already went out, so a failed mark only risks one
	// duplicate reminder after a restart.
	if err := s.store.MarkReminderSent(ctx, b.ID); err != nil {
		s.logger.Error().Err(err).
			Str("booking_id", b.ID).
			Msg("failed to mark reminder as sent")
	}

	metrics.IncReminderSent()
	s.logger.Info().
		Str("booking_id", b.ID).
		Str("yacht", b.YachtName).
		Time("departure", b.StartDate).
		Msg("reminder sent")
	return nil
}

// CheckNow triggers an immediate scan (useful for testing and manual runs).
func (s *Service) CheckNow() {
	s.checkAndSend()
}
