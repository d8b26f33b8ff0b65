package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"regatta/internal/database"
	"regatta/internal/metrics"
	"regatta/internal/models"
	"regatta/internal/service"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	YachtID       string `json:"yacht_id"`
	StartDate     string `json:"start_date"` // Format: YYYY-MM-DD
	EndDate       string `json:"end_date"`   // Format: YYYY-MM-DD
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// TransitionRequest is the request body for PATCH /api/bookings/{id}/status.
type TransitionRequest struct {
	Status string `json:"status"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	case http.MethodGet:
		s.handleListBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.YachtID == "" || req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "yacht_id, start_date and end_date are required")
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		writeError(w, http.StatusBadRequest, "customer_name and customer_email are required")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	actorID, _ := actor(r)
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	b, err := s.bookings.CreateBooking(r.Context(), service.CreateBookingRequest{
		YachtID:       req.YachtID,
		UserID:        actorID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_bookings")

	actorID, role := actor(r)

	filter := database.BookingFilter{
		YachtID: r.URL.Query().Get("yacht_id"),
		UserID:  r.URL.Query().Get("user_id"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := models.Status(status)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = st
	}

	bookings, err := s.bookings.ListBookings(r.Context(), filter, actorID, role)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list bookings")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// handleBookingByID routes GET /api/bookings/{id} and
// PATCH /api/bookings/{id}/status.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}
	if rest == "validate" {
		s.handleValidate(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		s.handleTransition(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("get_booking")

	actorID, role := actor(r)
	b, err := s.bookings.GetBooking(r.Context(), rest, actorID, role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleTransition(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("transition_booking")

	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	var req TransitionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	to := models.Status(req.Status)
	if !to.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	actorID, role := actor(r)
	if actorID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	b, err := s.bookings.TransitionStatus(r.Context(), id, to, actorID, role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}
