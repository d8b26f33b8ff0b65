package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"regatta/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB represents the database connection and its yacht cache.
type DB struct {
	*sql.DB
	path       string
	yachtCache map[string]models.YachtListing
	cacheTime  time.Time
	mu         sync.RWMutex
	logger     *zerolog.Logger
}

var (
	ErrNotFound               = errors.New("not found")
	ErrNotAvailable           = errors.New("dates not available")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// NewDB initializes a new database connection and creates tables if they don't exist.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode and busy timeout keep concurrent request handlers from
	// tripping over the single sqlite writer.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{
		DB:         db,
		path:       path,
		yachtCache: make(map[string]models.YachtListing),
		logger:     logger,
	}

	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	if err := instance.LoadYachts(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to load yachts into cache")
		// Not fatal; the fleet may simply be empty on first start.
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS yachts (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			image_url TEXT,
			price_per_day REAL NOT NULL,
			capacity INTEGER NOT NULL,
			length REAL NOT NULL DEFAULT 0,
			location TEXT,
			features TEXT,
			crew INTEGER NOT NULL DEFAULT 0,
			cabins INTEGER NOT NULL DEFAULT 0,
			speed REAL NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			yacht_id TEXT NOT NULL,
			yacht_name TEXT NOT NULL,
			user_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			total_price REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY(yacht_id) REFERENCES yachts(id)
		)`,

		// The conflict check in CreateBooking scans by (yacht_id, status, dates).
		`CREATE INDEX IF NOT EXISTS idx_bookings_yacht_status ON bookings(yacht_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,

		`CREATE INDEX IF NOT EXISTS idx_yachts_active ON yachts(is_active)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %v", query, err)
		}
	}

	return db.ensureNewColumns()
}

// ensureNewColumns adds new columns to existing tables if they don't exist.
func (db *DB) ensureNewColumns() error {
	migrations := []string{
		`ALTER TABLE yachts ADD COLUMN crew INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE yachts ADD COLUMN cabins INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE yachts ADD COLUMN speed REAL NOT NULL DEFAULT 0`,
		`ALTER TABLE bookings ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE bookings ADD COLUMN reminder_sent BOOLEAN NOT NULL DEFAULT 0`,
	}

	for _, m := range migrations {
		_, err := db.Exec(m)
		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			if db.logger != nil {
				db.logger.Debug().Err(err).Str("migration", m).Msg("Migration skipped")
			}
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
