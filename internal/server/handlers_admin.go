package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// handleAdminSync handles POST /api/admin/sync, forcing a universe refresh.
func (s *Server) handleAdminSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	count, err := s.app.MarketService.SyncStocks(r.Context(), true)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Sync failed: %v", err))
		return
	}

	s.logger.Info().Int("updated", count).Msg("Admin-triggered stock sync completed")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "completed",
		"updated": count,
	})
}

// handleAdminGenerateAlerts handles POST /api/admin/alerts/generate.
func (s *Server) handleAdminGenerateAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	created, err := s.app.AlertService.GenerateAlerts(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Alert generation failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "completed",
		"created": created,
	})
}

// handleAdminJobs handles GET /api/admin/jobs.
// Query params: pending (true = pending only), limit.
func (s *Server) handleAdminJobs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	limit := 100
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	store := s.app.Storage.JobQueueStore()
	var err error
	var jobs interface{}
	if q.Get("pending") == "true" {
		jobs, err = store.ListPending(r.Context(), limit)
	} else {
		jobs, err = store.ListAll(r.Context(), limit)
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing jobs: %v", err))
		return
	}

	pending, err := store.CountPending(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error counting jobs: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":    jobs,
		"pending": pending,
	})
}

// handleAdminJobCancel handles POST /api/admin/jobs/{id}/cancel.
func (s *Server) handleAdminJobCancel(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/admin/jobs/")
	id := strings.TrimSuffix(path, "/cancel")
	if id == "" || id == path {
		WriteError(w, http.StatusNotFound, "Unknown job action")
		return
	}

	if err := s.app.Storage.JobQueueStore().Cancel(r.Context(), id); err != nil {
		WriteError(w, http.StatusConflict, fmt.Sprintf("Cannot cancel job: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "cancelled"})
}
