package reminders

import (
	"context"

	"github.com/rs/zerolog"

	"regatta/internal/models"
)

// LogNotifier writes reminders to the log. It stands in for a mail or SMS
// gateway in deployments that have none configured.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n *LogNotifier) SendReminder(_ context.Context, b models.Booking) error {
	n.Logger.Info().
		Str("booking_id", b.ID).
		Str("customer", b.CustomerName).
		Str("email", b.CustomerEmail).
		Str("yacht", b.YachtName).
		Time("departure", b.StartDate).
		Msg("charter departure reminder")
	return nil
}
