// Package api exposes the charter engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"regatta/internal/availability"
	"regatta/internal/booking"
	"regatta/internal/database"
	"regatta/internal/models"
	"regatta/internal/service"
)

// BookingAPI is the slice of the booking service the handlers need.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req service.CreateBookingRequest) (*models.Booking, error)
	TransitionStatus(ctx context.Context, id string, to models.Status, actorID string, role models.Role) (*models.Booking, error)
	ValidateRange(ctx context.Context, yachtID string, start, end time.Time) (booking.Result, error)
	AvailabilityGrid(ctx context.Context, yachtID string, start, end time.Time) ([]availability.DateStatus, error)
	ListBookings(ctx context.Context, filter database.BookingFilter, actorID string, role models.Role) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string, actorID string, role models.Role) (*models.Booking, error)
}

// YachtAPI is the slice of the yacht service the handlers need.
type YachtAPI interface {
	ListYachts(ctx context.Context) []models.YachtListing
	GetYacht(ctx context.Context, id string) (*models.YachtListing, error)
	CreateYacht(ctx context.Context, y *models.YachtListing) error
	UpdateYacht(ctx context.Context, y *models.YachtListing) error
	DeactivateYacht(ctx context.Context, id string) error
}

// HTTPServer is the public API server.
type HTTPServer struct {
	bookings BookingAPI
	yachts   YachtAPI
	apiKey   string
	log      *zerolog.Logger
	srv      *http.Server

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	rps       rate.Limit
	burst     int
}

func NewHTTPServer(bookings BookingAPI, yachts YachtAPI, apiKey string, rps float64, burst int, log *zerolog.Logger) *HTTPServer {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &HTTPServer{
		bookings: bookings,
		yachts:   yachts,
		apiKey:   apiKey,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Handler builds the routed handler with auth and rate limiting applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/", s.handleBookingByID)
	mux.HandleFunc("/api/yachts", s.handleYachts)
	mux.HandleFunc("/api/yachts/", s.handleYachtSubtree)
	mux.HandleFunc("/api/admin/export", s.handleExport)
	return s.rateLimit(s.authenticate(mux))
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *HTTPServer) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("api server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-Api-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiterFor(clientKey(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) limiterFor(key string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	lim, ok := s.limiters[key]
	if !ok {
		lim = rate.NewLimiter(s.rps, s.burst)
		s.limiters[key] = lim
	}
	return lim
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// actor extracts the calling identity from request headers. The upstream
// gateway terminates real authentication; these headers are trusted here.
func actor(r *http.Request) (string, models.Role) {
	id := r.Header.Get("X-User-ID")
	role := models.Role(strings.ToLower(r.Header.Get("X-User-Role")))
	if role != models.RoleAdmin {
		role = models.RoleCustomer
	}
	return id, role
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeDomainError maps the rule sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, booking.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, booking.ErrOverlap):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "booking was modified concurrently; retry")
	case errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrTooShort),
		errors.Is(err, booking.ErrOutOfSeason):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", value)
	}
	return d, nil
}
