package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"regatta/internal/availability"
	"regatta/internal/metrics"
)

// MaxAvailabilityDaysRange caps the window of a single availability request.
const MaxAvailabilityDaysRange = 180

// AvailabilityRequest is the request body for POST /api/yachts/availability.
type AvailabilityRequest struct {
	YachtID   string `json:"yacht_id"`
	StartDate string `json:"start_date"` // Format: YYYY-MM-DD
	EndDate   string `json:"end_date"`   // Format: YYYY-MM-DD
}

// AvailabilityResponse is the response for POST /api/yachts/availability.
type AvailabilityResponse struct {
	YachtID string                    `json:"yacht_id"`
	Dates   []availability.DateStatus `json:"dates"`
	Period  struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// ValidateRequest is the request body for POST /api/bookings/validate.
type ValidateRequest struct {
	YachtID   string `json:"yacht_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// handleAvailability returns per-date verdicts for one yacht.
// POST /api/yachts/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req AvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, end, err := parseWindow(req.YachtID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := s.bookings.AvailabilityGrid(r.Context(), req.YachtID, start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := AvailabilityResponse{YachtID: req.YachtID, Dates: grid}
	resp.Period.Start = req.StartDate
	resp.Period.End = req.EndDate
	writeJSON(w, http.StatusOK, resp)
}

// handleValidate runs the booking rules without persisting anything.
// POST /api/bookings/validate
func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("validate_booking")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req ValidateRequest
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

	result, err := s.bookings.ValidateRange(r.Context(), req.YachtID, start, end)
	if err != nil {
		s.log.Error().Err(err).Str("yacht_id", req.YachtID).Msg("validation failed")
		writeError(w, http.StatusInternalServerError, "validation failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseWindow(yachtID, startStr, endStr string) (start, end time.Time, err error) {
	if yachtID == "" || startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("yacht_id, start_date and end_date are required")
	}
	start, err = parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before or equal to end_date")
	}
	if int(end.Sub(start).Hours()/24) > MaxAvailabilityDaysRange {
		return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds maximum of %d days", MaxAvailabilityDaysRange)
	}
	return start, end, nil
}
