package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/services/portfolio"
)

// handlePortfolioSummary handles GET /api/portfolio/summary.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	summary, err := s.app.PortfolioService.GetSummary(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error getting portfolio summary: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// handlePortfolioPositions handles GET /api/portfolio/positions.
func (s *Server) handlePortfolioPositions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	positions, err := s.app.PortfolioService.GetPositions(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error getting positions: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// routePortfolioPositions handles PUT and DELETE
// /api/portfolio/positions/{ticker} for direct position imports.
func (s *Server) routePortfolioPositions(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	ticker := PathParam(r, "/api/portfolio/positions/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Shares  float64 `json:"shares"`
			AvgCost float64 `json:"avg_cost"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		pos, err := s.app.PortfolioService.SetPosition(r.Context(), userID, ticker, req.Shares, req.AvgCost)
		if err != nil {
			switch {
			case errors.Is(err, portfolio.ErrUnknownTicker):
				WriteError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, portfolio.ErrInvalidPosition):
				WriteError(w, http.StatusBadRequest, err.Error())
			default:
				WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error setting position: %v", err))
			}
			return
		}
		WriteJSON(w, http.StatusOK, pos)

	case http.MethodDelete:
		if err := s.app.PortfolioService.DeletePosition(r.Context(), userID, ticker); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting position: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})

	default:
		w.Header().Set("Allow", "PUT, DELETE")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handlePortfolioTrades handles GET and POST /api/portfolio/trades.
func (s *Server) handlePortfolioTrades(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTrades(w, r)
	case http.MethodPost:
		s.handleRecordTrade(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	trades, err := s.app.PortfolioService.ListTrades(r.Context(), userID, q.Get("ticker"), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing trades: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

func (s *Server) handleRecordTrade(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req interfaces.TradeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	trade, err := s.app.PortfolioService.RecordTrade(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, portfolio.ErrUnknownTicker):
			WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, portfolio.ErrInvalidTradeType):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error recording trade: %v", err))
		}
		return
	}

	WriteJSON(w, http.StatusCreated, trade)
}
