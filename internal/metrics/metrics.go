package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by customers.",
		},
	)

	adminDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "admin_decision_total",
			Help:      "Count of administrator decisions over bookings.",
		},
		[]string{"decision"},
	)

	validationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "validation_rejected_total",
			Help:      "Count of candidate ranges rejected by reason.",
		},
		[]string{"reason"},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "reminders_sent_total",
			Help:      "Count of departure reminders sent.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regatta",
			Name:      "http_requests_total",
			Help:      "Count of HTTP API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, adminDecision, validationRejected, remindersSent, httpRequests)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncAdminDecision(decision string) {
	adminDecision.WithLabelValues(decision).Inc()
}

func IncValidationRejected(reason string) {
	validationRejected.WithLabelValues(reason).Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
