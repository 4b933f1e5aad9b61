package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/accraquant/sika/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/debug/memstats", s.handleMemstats)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/me", s.handleAuthMe)

	// Market data (public, no auth)
	mux.HandleFunc("/api/market/stocks/", s.routeMarketStocks)
	mux.HandleFunc("/api/market/stocks", s.handleMarketStocks)

	// Portfolio
	mux.HandleFunc("/api/portfolio/summary", s.handlePortfolioSummary)
	mux.HandleFunc("/api/portfolio/positions/", s.routePortfolioPositions) // handles {ticker}
	mux.HandleFunc("/api/portfolio/positions", s.handlePortfolioPositions)
	mux.HandleFunc("/api/portfolio/trades", s.handlePortfolioTrades)

	// Alerts
	mux.HandleFunc("/api/alerts/unread-count", s.handleAlertsUnreadCount)
	mux.HandleFunc("/api/alerts/", s.routeAlertActions) // handles {id}/read, {id}/dismiss
	mux.HandleFunc("/api/alerts", s.handleAlerts)

	// Backtests
	mux.HandleFunc("/api/backtests/", s.routeBacktest) // handles {id}, {id}/chart
	mux.HandleFunc("/api/backtests", s.handleBacktests)

	// Watchlist
	mux.HandleFunc("/api/watchlist/", s.handleWatchlistRemove) // handles {ticker}
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// Admin
	mux.HandleFunc("/api/admin/sync", s.handleAdminSync)
	mux.HandleFunc("/api/admin/alerts/generate", s.handleAdminGenerateAlerts)
	mux.HandleFunc("/api/admin/jobs/", s.handleAdminJobCancel) // handles {id}/cancel
	mux.HandleFunc("/api/admin/jobs", s.handleAdminJobs)
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}

func (s *Server) handleMemstats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"heap_alloc_bytes": m.HeapAlloc,
		"heap_inuse_bytes": m.HeapInuse,
		"sys_bytes":        m.Sys,
		"num_gc":           m.NumGC,
		"heap_alloc_mb":    float64(m.HeapAlloc) / 1024 / 1024,
	})
}
