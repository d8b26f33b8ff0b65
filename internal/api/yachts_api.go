package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"regatta/internal/metrics"
	"regatta/internal/models"
)

func (s *HTTPServer) handleYachts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("list_yachts")
		writeJSON(w, http.StatusOK, map[string]any{"yachts": s.yachts.ListYachts(r.Context())})
	case http.MethodPost:
		s.handleCreateYacht(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleYachtSubtree routes /api/yachts/availability and /api/yachts/{id}.
func (s *HTTPServer) handleYachtSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/yachts/")
	if rest == "availability" {
		s.handleAvailability(w, r)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("get_yacht")
		y, err := s.yachts.GetYacht(r.Context(), rest)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, y)
	case http.MethodPut:
		s.handleUpdateYacht(w, r, rest)
	case http.MethodDelete:
		s.handleDeactivateYacht(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCreateYacht(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_yacht")
	if !requireAdmin(w, r) {
		return
	}

	var y models.YachtListing
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&y); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := y.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.yachts.CreateYacht(r.Context(), &y); err != nil {
		s.log.Error().Err(err).Str("name", y.Name).Msg("failed to create yacht")
		writeError(w, http.StatusInternalServerError, "failed to create yacht")
		return
	}
	writeJSON(w, http.StatusCreated, y)
}

func (s *HTTPServer) handleUpdateYacht(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("update_yacht")
	if !requireAdmin(w, r) {
		return
	}

	var y models.YachtListing
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&y); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	y.ID = id
	if err := y.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.yachts.UpdateYacht(r.Context(), &y); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, y)
}

func (s *HTTPServer) handleDeactivateYacht(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("deactivate_yacht")
	if !requireAdmin(w, r) {
		return
	}

	if err := s.yachts.DeactivateYacht(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if _, role := actor(r); role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}
