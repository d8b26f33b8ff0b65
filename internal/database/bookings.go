package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"regatta/internal/models"
)

const bookingColumns = `id, yacht_id, yacht_name, user_id, customer_name,
	customer_email, customer_phone, start_date, end_date, total_price,
	status, created_at, last_updated, version`

// BookingFilter narrows ListBookings.
type BookingFilter struct {
	YachtID string
	UserID  string
	Status  models.Status
}

// ListActiveBookings returns the yacht's bookings that count against
// availability (pending or confirmed), the snapshot validators run against.
func (db *DB) ListActiveBookings(ctx context.Context, yachtID string) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE yacht_id = ? AND status IN ('pending', 'confirmed')
		ORDER BY start_date`,
		yachtID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// CreateBooking appends a new booking inside a transaction. The non-overlap
// check is re-run against active bookings atomically with the insert, so two
// clients that both passed pre-submission validation cannot both commit
// conflicting ranges. Status is forced to pending regardless of input.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Inclusive-boundary conflict: existing.start <= candidate.end AND
	// existing.end >= candidate.start.
	var conflicts int64
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE yacht_id = ? AND status IN ('pending', 'confirmed')
		AND date(start_date) <= date(?) AND date(end_date) >= date(?)`,
		b.YachtID, b.EndDate, b.StartDate,
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflicts > 0 {
		return ErrNotAvailable
	}

	now := time.Now()
	b.Status = models.StatusPending
	b.CreatedAt = now
	b.LastUpdated = now
	b.Version = 1

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, yacht_id, yacht_name, user_id, customer_name, customer_email,
			customer_phone, start_date, end_date, total_price, status,
			created_at, last_updated, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.YachtID, b.YachtName, b.UserID, b.CustomerName, b.CustomerEmail,
		b.CustomerPhone, b.StartDate, b.EndDate, b.TotalPrice, string(b.Status),
		b.CreatedAt, b.LastUpdated, b.Version,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetBooking returns a booking by id.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookingStatus applies a status transition as a single atomic update
// of status and last_updated. The version check guards against a concurrent
// transition racing this one; the loser gets ErrConcurrentModification.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, version int64, status models.Status) error {
	result, err := db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, last_updated = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		string(status), time.Now(), id, version,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists int64
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bookings WHERE id = ?`, id,
		).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns bookings matching the filter, most recent charter first.
func (db *DB) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := make([]any, 0, 3)

	if filter.YachtID != "" {
		query += ` AND yacht_id = ?`
		args = append(args, filter.YachtID)
	}
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY start_date DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// DeleteOldBookings removes terminal bookings whose charter ended before the
// retention cutoff. Active bookings are never deleted.
func (db *DB) DeleteOldBookings(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Format("2006-01-02")
	result, err := db.ExecContext(ctx, `
		DELETE FROM bookings
		WHERE status IN ('cancelled', 'rejected', 'completed')
		AND date(end_date) < date(?)`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var status string
	err := row.Scan(
		&b.ID, &b.YachtID, &b.YachtName, &b.UserID, &b.CustomerName,
		&b.CustomerEmail, &b.CustomerPhone, &b.StartDate, &b.EndDate,
		&b.TotalPrice, &status, &b.CreatedAt, &b.LastUpdated, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.Status = models.Status(status)
	return &b, nil
}
