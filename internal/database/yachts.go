package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"regatta/internal/models"
)

const yachtColumns = `id, name, description, image_url, price_per_day, capacity,
	length, location, features, crew, cabins, speed, is_active, created_at, updated_at`

// LoadYachts refreshes the in-memory yacht cache.
func (db *DB) LoadYachts(ctx context.Context) error {
	rows, err := db.QueryContext(ctx,
		`SELECT `+yachtColumns+` FROM yachts ORDER BY name`)
	if err != nil {
		return fmt.Errorf("load yachts: %w", err)
	}
	defer rows.Close()

	cache := make(map[string]models.YachtListing)
	for rows.Next() {
		y, err := scanYacht(rows)
		if err != nil {
			return err
		}
		cache[y.ID] = *y
	}
	if err := rows.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	db.yachtCache = cache
	db.cacheTime = time.Now()
	db.mu.Unlock()
	return nil
}

// GetYachts returns all cached yachts.
func (db *DB) GetYachts() []models.YachtListing {
	db.mu.RLock()
	defer db.mu.RUnlock()

	yachts := make([]models.YachtListing, 0, len(db.yachtCache))
	for _, y := range db.yachtCache {
		yachts = append(yachts, y)
	}
	return yachts
}

// GetYachtByID returns a yacht by id, preferring the cache.
func (db *DB) GetYachtByID(ctx context.Context, id string) (*models.YachtListing, error) {
	db.mu.RLock()
	if y, ok := db.yachtCache[id]; ok {
		db.mu.RUnlock()
		return &y, nil
	}
	db.mu.RUnlock()

	row := db.QueryRowContext(ctx,
		`SELECT `+yachtColumns+` FROM yachts WHERE id = ?`, id)
	y, err := scanYacht(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return y, nil
}

// CreateYacht inserts a new listing and refreshes the cache.
func (db *DB) CreateYacht(ctx context.Context, y *models.YachtListing) error {
	if err := y.Validate(); err != nil {
		return err
	}

	features, err := json.Marshal(y.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	now := time.Now()
	y.CreatedAt = now
	y.UpdatedAt = now
	y.IsActive = true

	_, err = db.ExecContext(ctx, `
		INSERT INTO yachts (
			id, name, description, image_url, price_per_day, capacity,
			length, location, features, crew, cabins, speed, is_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		y.ID, y.Name, y.Description, y.ImageURL, y.PricePerDay, y.Capacity,
		y.Length, y.Location, string(features), y.Crew, y.Cabins, y.Speed,
		y.IsActive, y.CreatedAt, y.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert yacht: %w", err)
	}

	return db.LoadYachts(ctx)
}

// UpdateYacht updates mutable listing attributes; identity is immutable.
func (db *DB) UpdateYacht(ctx context.Context, y *models.YachtListing) error {
	if err := y.Validate(); err != nil {
		return err
	}

	features, err := json.Marshal(y.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		UPDATE yachts SET
			name = ?, description = ?, image_url = ?, price_per_day = ?,
			capacity = ?, length = ?, location = ?, features = ?,
			crew = ?, cabins = ?, speed = ?, updated_at = ?
		WHERE id = ?`,
		y.Name, y.Description, y.ImageURL, y.PricePerDay,
		y.Capacity, y.Length, y.Location, string(features),
		y.Crew, y.Cabins, y.Speed, time.Now(), y.ID,
	)
	if err != nil {
		return fmt.Errorf("update yacht: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return db.LoadYachts(ctx)
}

// DeactivateYacht soft-deletes a listing.
func (db *DB) DeactivateYacht(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE yachts SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return db.LoadYachts(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanYacht(row rowScanner) (*models.YachtListing, error) {
	var y models.YachtListing
	var features sql.NullString
	err := row.Scan(
		&y.ID, &y.Name, &y.Description, &y.ImageURL, &y.PricePerDay, &y.Capacity,
		&y.Length, &y.Location, &features, &y.Crew, &y.Cabins, &y.Speed,
		&y.IsActive, &y.CreatedAt, &y.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &y.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features: %w", err)
		}
	}
	return &y, nil
}
