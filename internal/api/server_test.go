package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regatta/internal/availability"
	"regatta/internal/booking"
	"regatta/internal/database"
	"regatta/internal/models"
	"regatta/internal/service"
)

type stubBookingAPI struct {
	createErr     error
	created       *models.Booking
	transitionErr error
	transitioned  *models.Booking
	validation    booking.Result
	grid          []availability.DateStatus
	gridErr       error
	bookings      []models.Booking
	lastFilter    database.BookingFilter
}

func (s *stubBookingAPI) CreateBooking(_ context.Context, req service.CreateBookingRequest) (*models.Booking, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &models.Booking{
		ID:        "b1",
		YachtID:   req.YachtID,
		UserID:    req.UserID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.StatusPending,
	}, nil
}

func (s *stubBookingAPI) TransitionStatus(_ context.Context, id string, to models.Status, _ string, _ models.Role) (*models.Booking, error) {
	if s.transitionErr != nil {
		return nil, s.transitionErr
	}
	if s.transitioned != nil {
		return s.transitioned, nil
	}
	return &models.Booking{ID: id, Status: to}, nil
}

func (s *stubBookingAPI) ValidateRange(_ context.Context, _ string, _, _ time.Time) (booking.Result, error) {
	return s.validation, nil
}

func (s *stubBookingAPI) AvailabilityGrid(_ context.Context, _ string, _, _ time.Time) ([]availability.DateStatus, error) {
	if s.gridErr != nil {
		return nil, s.gridErr
	}
	return s.grid, nil
}

func (s *stubBookingAPI) ListBookings(_ context.Context, filter database.BookingFilter, _ string, _ models.Role) ([]models.Booking, error) {
	s.lastFilter = filter
	return s.bookings, nil
}

func (s *stubBookingAPI) GetBooking(_ context.Context, id string, _ string, _ models.Role) (*models.Booking, error) {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return &s.bookings[i], nil
		}
	}
	return nil, booking.ErrNotFound
}

type stubYachtAPI struct {
	yachts    []models.YachtListing
	createErr error
}

func (s *stubYachtAPI) ListYachts(_ context.Context) []models.YachtListing { return s.yachts }

func (s *stubYachtAPI) GetYacht(_ context.Context, id string) (*models.YachtListing, error) {
	for i := range s.yachts {
		if s.yachts[i].ID == id {
			return &s.yachts[i], nil
		}
	}
	return nil, booking.ErrNotFound
}

func (s *stubYachtAPI) CreateYacht(_ context.Context, y *models.YachtListing) error {
	return s.createErr
}
func (s *stubYachtAPI) UpdateYacht(_ context.Context, _ *models.YachtListing) error { return nil }
func (s *stubYachtAPI) DeactivateYacht(_ context.Context, _ string) error           { return nil }

func newTestServer(bookings *stubBookingAPI, yachts *stubYachtAPI, apiKey string) http.Handler {
	logger := zerolog.New(io.Discard)
	return NewHTTPServer(bookings, yachts, apiKey, 1000, 1000, &logger).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func customerHeaders(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID, "X-User-Role": "customer"}
}

func adminHeaders() map[string]string {
	return map[string]string{"X-User-ID": "admin1", "X-User-Role": "admin"}
}

func TestAPIKeyGuard(t *testing.T) {
	handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "secret")

	rec := doJSON(t, handler, http.MethodGet, "/api/yachts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/yachts", nil, map[string]string{"X-Api-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBookingEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		headers    map[string]string
		createErr  error
		wantStatus int
	}{
		{
			name: "created",
			body: CreateBookingRequest{
				YachtID: "y1", StartDate: "2024-06-10", EndDate: "2024-06-15",
				CustomerName: "Ann", CustomerEmail: "ann@example.com",
			},
			headers:    customerHeaders("u1"),
			wantStatus: http.StatusCreated,
		},
		{
			name: "overlap conflict",
			body: CreateBookingRequest{
				YachtID: "y1", StartDate: "2024-06-14", EndDate: "2024-06-18",
				CustomerName: "Ann", CustomerEmail: "ann@example.com",
			},
			headers:    customerHeaders("u1"),
			createErr:  booking.ErrOverlap,
			wantStatus: http.StatusConflict,
		},
		{
			name: "too short",
			body: CreateBookingRequest{
				YachtID: "y1", StartDate: "2024-06-10", EndDate: "2024-06-11",
				CustomerName: "Ann", CustomerEmail: "ann@example.com",
			},
			headers:    customerHeaders("u1"),
			createErr:  booking.ErrTooShort,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "bad date",
			body: CreateBookingRequest{
				YachtID: "y1", StartDate: "10.06.2024", EndDate: "2024-06-15",
				CustomerName: "Ann", CustomerEmail: "ann@example.com",
			},
			headers:    customerHeaders("u1"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing identity",
			body: CreateBookingRequest{
				YachtID: "y1", StartDate: "2024-06-10", EndDate: "2024-06-15",
				CustomerName: "Ann", CustomerEmail: "ann@example.com",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field rejected",
			body:       map[string]any{"yacht_id": "y1", "surprise": true},
			headers:    customerHeaders("u1"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubBookingAPI{createErr: tt.createErr}
			handler := newTestServer(stub, &stubYachtAPI{}, "")

			rec := doJSON(t, handler, http.MethodPost, "/api/bookings", tt.body, tt.headers)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	stub := &stubBookingAPI{validation: booking.Result{Reason: booking.ReasonOverlap}}
	handler := newTestServer(stub, &stubYachtAPI{}, "")

	rec := doJSON(t, handler, http.MethodPost, "/api/bookings/validate", ValidateRequest{
		YachtID: "y1", StartDate: "2024-06-14", EndDate: "2024-06-18",
	}, customerHeaders("u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var result booking.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Accepted)
	assert.Equal(t, booking.ReasonOverlap, result.Reason)
}

func TestAvailabilityEndpoint(t *testing.T) {
	stub := &stubBookingAPI{grid: []availability.DateStatus{
		{Date: "2024-06-10", Available: false, Reason: "booked"},
		{Date: "2024-06-16", Available: true},
	}}
	handler := newTestServer(stub, &stubYachtAPI{}, "")

	t.Run("ok", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/yachts/availability", AvailabilityRequest{
			YachtID: "y1", StartDate: "2024-06-10", EndDate: "2024-06-16",
		}, customerHeaders("u1"))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AvailabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Dates, 2)
		assert.Equal(t, "2024-06-10", resp.Period.Start)
	})

	t.Run("inverted window", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/yachts/availability", AvailabilityRequest{
			YachtID: "y1", StartDate: "2024-06-16", EndDate: "2024-06-10",
		}, customerHeaders("u1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("window too wide", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/yachts/availability", AvailabilityRequest{
			YachtID: "y1", StartDate: "2024-01-01", EndDate: "2025-01-01",
		}, customerHeaders("u1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get not allowed", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/yachts/availability", nil, customerHeaders("u1"))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestTransitionEndpoint(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPatch, "/api/bookings/b1/status",
			TransitionRequest{Status: "confirmed"}, adminHeaders())

		require.Equal(t, http.StatusOK, rec.Code)
		var b models.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, models.StatusConfirmed, b.Status)
	})

	t.Run("forbidden", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{transitionErr: booking.ErrForbidden}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPatch, "/api/bookings/b1/status",
			TransitionRequest{Status: "cancelled"}, customerHeaders("u2"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid transition", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{transitionErr: booking.ErrInvalidTransition}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPatch, "/api/bookings/b1/status",
			TransitionRequest{Status: "confirmed"}, adminHeaders())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPatch, "/api/bookings/b1/status",
			TransitionRequest{Status: "teleported"}, adminHeaders())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestYachtAdminGuard(t *testing.T) {
	yacht := models.YachtListing{Name: "Sea Breeze", PricePerDay: 1000, Capacity: 8}

	t.Run("customer cannot create", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPost, "/api/yachts", yacht, customerHeaders("u1"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodPost, "/api/yachts", yacht, adminHeaders())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("customer cannot deactivate", func(t *testing.T) {
		handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")
		rec := doJSON(t, handler, http.MethodDelete, "/api/yachts/y1", nil, customerHeaders("u1"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListBookingsStatusFilter(t *testing.T) {
	stub := &stubBookingAPI{bookings: []models.Booking{}}
	handler := newTestServer(stub, &stubYachtAPI{}, "")

	rec := doJSON(t, handler, http.MethodGet, "/api/bookings?status=confirmed&yacht_id=y1", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusConfirmed, stub.lastFilter.Status)
	assert.Equal(t, "y1", stub.lastFilter.YachtID)

	rec = doJSON(t, handler, http.MethodGet, "/api/bookings?status=teleported", nil, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportRequiresAdmin(t *testing.T) {
	handler := newTestServer(&stubBookingAPI{}, &stubYachtAPI{}, "")

	rec := doJSON(t, handler, http.MethodGet, "/api/admin/export", nil, customerHeaders("u1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/admin/export", nil, adminHeaders())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
}
