package api

import (
	"fmt"
	"net/http"
	"time"

	"regatta/internal/database"
	"regatta/internal/export"
	"regatta/internal/metrics"
	"regatta/internal/models"
)

// handleExport streams the booking ledger as an xlsx workbook.
// GET /api/admin/export?yacht_id=...&status=...
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	filter := database.BookingFilter{
		YachtID: r.URL.Query().Get("yacht_id"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := models.Status(status)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = st
	}

	actorID, role := actor(r)
	bookings, err := s.bookings.ListBookings(r.Context(), filter, actorID, role)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load bookings for export")
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}

	report, err := export.NewBookingReport("Bookings")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build report")
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	defer report.Close()

	if err = report.AddAll(bookings); err != nil {
		s.log.Error().Err(err).Msg("failed to fill report")
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err = report.Save(w); err != nil {
		s.log.Error().Err(err).Msg("failed to stream report")
	}
}
