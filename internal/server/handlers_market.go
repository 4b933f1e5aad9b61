package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/accraquant/sika/internal/models"
)

// handleMarketStocks handles GET /api/market/stocks.
// Query params: sector, tier, active (default true), limit.
func (s *Server) handleMarketStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	filter := models.StockFilter{
		ActiveOnly: true,
		Sector:     q.Get("sector"),
		Tier:       models.Tier(strings.ToUpper(q.Get("tier"))),
	}
	if q.Get("active") == "false" {
		filter.ActiveOnly = false
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}

	stocks, err := s.app.MarketService.ListStocks(r.Context(), filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing stocks: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// routeMarketStocks dispatches /api/market/stocks/{ticker} and
// /api/market/stocks/{ticker}/history.
func (s *Server) routeMarketStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/market/stocks/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	if strings.HasSuffix(path, "/history") {
		ticker := strings.TrimSuffix(path, "/history")
		s.handleMarketHistory(w, r, ticker)
		return
	}

	s.handleMarketStock(w, r, path)
}

func (s *Server) handleMarketStock(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stock, err := s.app.MarketService.GetStock(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Stock not found: %s", models.NormalizeTicker(ticker)))
		return
	}

	WriteJSON(w, http.StatusOK, stock)
}

// handleMarketHistory handles GET /api/market/stocks/{ticker}/history.
// Query params: from, to (YYYY-MM-DD); defaults to the trailing year.
func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	to := time.Now()
	from := to.AddDate(-1, 0, 0)

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		to = t
	}

	points, err := s.app.MarketService.GetPriceHistory(r.Context(), ticker, from, to)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error getting price history: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": models.NormalizeTicker(ticker),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"points": points,
	})
}
