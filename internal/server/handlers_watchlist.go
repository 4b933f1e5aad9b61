package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/accraquant/sika/internal/services/watchlist"
)

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetWatchlist(w, r)
	case http.MethodPost:
		s.handleWatchlistAdd(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	wl, err := s.app.WatchlistService.GetWatchlist(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error getting watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, wl)
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req struct {
		Ticker string `json:"ticker"`
		Note   string `json:"note"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	wl, err := s.app.WatchlistService.AddItem(r.Context(), userID, req.Ticker, req.Note)
	if err != nil {
		if errors.Is(err, watchlist.ErrUnknownTicker) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error adding to watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, wl)
}

// handleWatchlistRemove handles DELETE /api/watchlist/{ticker}.
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	wl, err := s.app.WatchlistService.RemoveItem(r.Context(), userID, ticker)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error removing from watchlist: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, wl)
}
