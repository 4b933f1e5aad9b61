package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/services/alert"
	"github.com/accraquant/sika/internal/storage/surrealdb"
)

// handleAlerts handles GET /api/alerts.
// Query params: ticker, unread (true), include_hidden (true), limit.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	q := r.URL.Query()
	filter := models.AlertFilter{
		Ticker:        models.NormalizeTicker(q.Get("ticker")),
		UnreadOnly:    q.Get("unread") == "true",
		IncludeHidden: q.Get("include_hidden") == "true",
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	alerts, err := s.app.AlertService.ListAlerts(r.Context(), userID, filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing alerts: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleAlertsUnreadCount handles GET /api/alerts/unread-count.
func (s *Server) handleAlertsUnreadCount(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	count, err := s.app.AlertService.UnreadCount(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error counting unread alerts: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"unread": count})
}

// routeAlertActions dispatches POST /api/alerts/{id}/read and
// POST /api/alerts/{id}/dismiss.
func (s *Server) routeAlertActions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	var err error
	switch {
	case strings.HasSuffix(path, "/read"):
		err = s.app.AlertService.MarkRead(r.Context(), userID, strings.TrimSuffix(path, "/read"))
	case strings.HasSuffix(path, "/dismiss"):
		err = s.app.AlertService.Dismiss(r.Context(), userID, strings.TrimSuffix(path, "/dismiss"))
	default:
		WriteError(w, http.StatusNotFound, "Unknown alert action")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, alert.ErrAlertNotVisible):
			WriteError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, surrealdb.ErrNotFound):
			WriteError(w, http.StatusNotFound, "Alert not found")
		default:
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error updating alert: %v", err))
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
