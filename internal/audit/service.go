// Package audit archives the booking ledger and prunes old records.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"regatta/internal/database"
	"regatta/internal/export"
	"regatta/internal/models"
)

// Store is the booking storage surface the audit job needs.
type Store interface {
	ListBookings(ctx context.Context, filter database.BookingFilter) ([]models.Booking, error)
	DeleteOldBookings(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Config holds configuration for the audit service.
type Config struct {
	// DataRetentionDays is how long terminal bookings are kept after the
	// charter ends. Default: 365 days.
	DataRetentionDays int

	// ReportDir is where monthly ledger workbooks are written.
	ReportDir string

	// ExportOnStart if true, runs an export immediately on service start.
	ExportOnStart bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataRetentionDays: 365,
		ReportDir:         "reports",
	}
}

// Service writes the full booking ledger to an xlsx workbook on the first of
// every month, then deletes terminal bookings past retention.
type Service struct {
	config  *Config
	store   Store
	logger  *zerolog.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewService(config *Config, store Store, logger *zerolog.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DataRetentionDays <= 0 {
		config.DataRetentionDays = 365
	}
	if config.ReportDir == "" {
		config.ReportDir = "reports"
	}

	return &Service{
		config: config,
		store:  store,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins the audit scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		go s.RunExportAndCleanup()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Int("retention_days", s.config.DataRetentionDays).
		Str("report_dir", s.config.ReportDir).
		Msg("audit service started")
}

// Stop gracefully stops the audit service.
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

	s.logger.Info().Msg("audit service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := nextFirstOfMonth()
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.logger.Info().Time("next_run", nextRun).Msg("next audit scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunExportAndCleanup()

			nextRun = nextFirstOfMonth()
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("next_run", nextRun).Msg("next audit scheduled")
		}
	}
}

func nextFirstOfMonth() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}

// RunExportAndCleanup performs the export and cleanup immediately.
func (s *Service) RunExportAndCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.exportLedger(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to export booking ledger")
	}
	if err := s.cleanupOldData(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clean up old bookings")
	}
}

func (s *Service) exportLedger(ctx context.Context) error {
	bookings, err := s.store.ListBookings(ctx, database.BookingFilter{})
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	if len(bookings) == 0 {
		s.logger.Info().Msg("ledger empty, nothing to export")
		return nil
	}

	report, err := export.NewBookingReport("Bookings")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer report.Close()

	if err = report.AddAll(bookings); err != nil {
		return fmt.Errorf("fill report: %w", err)
	}

	if err = os.MkdirAll(s.config.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(s.config.ReportDir,
		fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("2006_01")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err = report.Save(f); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	s.logger.Info().Str("path", path).Int("rows", report.Rows()).Msg("ledger exported")
	return nil
}

func (s *Service) cleanupOldData(ctx context.Context) error {
	retention := time.Duration(s.config.DataRetentionDays) * 24 * time.Hour
	deleted, err := s.store.DeleteOldBookings(ctx, retention)
	if err != nil {
		return fmt.Errorf("delete old bookings: %w", err)
	}

	s.logger.Info().
		Int64("deleted_count", deleted).
		Int("retention_days", s.config.DataRetentionDays).
		Msg("old bookings cleaned up")
	return nil
}

// ExportNow triggers an immediate export (useful for testing or manual runs).
func (s *Service) ExportNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	return s.exportLedger(ctx)
}

// CleanupNow triggers an immediate cleanup (useful for testing).
func (s *Service) CleanupNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return s.cleanupOldData(ctx)
}
