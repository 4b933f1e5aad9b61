package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/services/backtest"
	"github.com/accraquant/sika/internal/storage/surrealdb"
	"github.com/accraquant/sika/internal/valuation"
)

// handleBacktests handles GET and POST /api/backtests.
func (s *Server) handleBacktests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBacktests(w, r)
	case http.MethodPost:
		s.handleCreateBacktest(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	backtests, err := s.app.BacktestService.ListBacktests(r.Context(), userID, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing backtests: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"backtests": backtests,
		"count":     len(backtests),
	})
}

func (s *Server) handleCreateBacktest(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var params models.BacktestParams
	if !DecodeJSON(w, r, &params) {
		return
	}

	bt, err := s.app.BacktestService.CreateBacktest(r.Context(), userID, params)
	if err != nil {
		if isBacktestValidationError(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating backtest: %v", err))
		return
	}

	WriteJSON(w, http.StatusCreated, bt)
}

func isBacktestValidationError(err error) bool {
	return errors.Is(err, valuation.ErrInvalidDateRange) ||
		errors.Is(err, valuation.ErrInvalidCapital) ||
		errors.Is(err, valuation.ErrNoStocksSelected) ||
		errors.Is(err, backtest.ErrUnknownStrategy) ||
		errors.Is(err, backtest.ErrUnknownRebalance)
}

// routeBacktest dispatches /api/backtests/{id} and /api/backtests/{id}/chart.
func (s *Server) routeBacktest(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/backtests/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "backtest id is required in path")
		return
	}

	if strings.HasSuffix(path, "/chart") {
		s.handleBacktestChart(w, r, strings.TrimSuffix(path, "/chart"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetBacktest(w, r, path)
	case http.MethodDelete:
		s.handleDeleteBacktest(w, r, path)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request, id string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	bt, err := s.app.BacktestService.GetBacktest(r.Context(), userID, id)
	if err != nil {
		writeBacktestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, bt)
}

func (s *Server) handleDeleteBacktest(w http.ResponseWriter, r *http.Request, id string) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	if err := s.app.BacktestService.DeleteBacktest(r.Context(), userID, id); err != nil {
		writeBacktestError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// handleBacktestChart handles GET /api/backtests/{id}/chart, returning a PNG.
func (s *Server) handleBacktestChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	png, err := s.app.BacktestService.RenderChart(r.Context(), userID, id)
	if err != nil {
		writeBacktestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeBacktestError maps backtest service errors onto HTTP status codes.
// Runs owned by other users report as not found rather than forbidden, so
// the API does not confirm which ids exist.
func writeBacktestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backtest.ErrNotOwner), errors.Is(err, surrealdb.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Backtest not found")
	case errors.Is(err, backtest.ErrNotTerminal):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, backtest.ErrNotCompleted):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error accessing backtest: %v", err))
	}
}
