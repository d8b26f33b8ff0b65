package database

import (
	"context"
	"fmt"
	"time"

	"regatta/internal/models"
)

// GetUpcomingCharters returns confirmed bookings that start within the
// look-ahead window and have not been reminded yet.
func (db *DB) GetUpcomingCharters(ctx context.Context, within time.Duration) ([]models.Booking, error) {
	today := models.Day(time.Now()).Format("2006-01-02")
	horizon := models.Day(time.Now().Add(within)).Format("2006-01-02")

	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'confirmed' AND reminder_sent = 0
		AND date(start_date) >= date(?) AND date(start_date) <= date(?)
		ORDER BY start_date`,
		today, horizon,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming charters: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// MarkReminderSent records that the departure reminder went out, so restarts
// do not re-send it.
func (db *DB) MarkReminderSent(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET reminder_sent = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
