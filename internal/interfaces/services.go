// Package interfaces defines service contracts for Sika
package interfaces

import (
	"context"
	"time"

	"github.com/accraquant/sika/internal/models"
)

// MarketService handles the stock universe and market data sync
type MarketService interface {
	// SyncStocks refreshes the stock universe from the GSE feed, rescoring
	// and re-tiering every equity. When force is true, data is re-fetched
	// regardless of freshness. Returns the number of stocks updated.
	SyncStocks(ctx context.Context, force bool) (int, error)

	// GetStock retrieves a single stock by ticker
	GetStock(ctx context.Context, ticker string) (*models.Stock, error)

	// ListStocks returns the stock universe, optionally filtered
	ListStocks(ctx context.Context, filter models.StockFilter) ([]*models.Stock, error)

	// GetPriceHistory retrieves daily closes for a ticker
	GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error)
}

// PortfolioService manages per-user holdings and trades
type PortfolioService interface {
	// GetSummary aggregates the user's positions against live quotes
	GetSummary(ctx context.Context, userID string) (*models.PortfolioSummary, error)

	// GetPositions returns the user's holdings enriched with live metrics
	GetPositions(ctx context.Context, userID string) ([]*models.PositionView, error)

	// SetPosition directly upserts a holding, bypassing the trade log.
	// Used for importing existing holdings.
	SetPosition(ctx context.Context, userID, ticker string, shares, avgCost float64) (*models.Position, error)

	// DeletePosition removes a holding without logging a trade
	DeletePosition(ctx context.Context, userID, ticker string) error

	// RecordTrade appends a trade to the log and folds it into the matching
	// position. A sell that empties the position deletes it.
	RecordTrade(ctx context.Context, userID string, req TradeRequest) (*models.Trade, error)

	// ListTrades returns the user's trade history, newest first. An empty
	// ticker means all tickers.
	ListTrades(ctx context.Context, userID, ticker string, limit int) ([]*models.Trade, error)
}

// TradeRequest is the input for recording a trade
type TradeRequest struct {
	Ticker     string    `json:"ticker"`
	TradeType  string    `json:"trade_type"` // "buy" or "sell"
	Shares     float64   `json:"shares"`
	Price      float64   `json:"price"`
	Fees       float64   `json:"fees"`
	ExecutedAt time.Time `json:"executed_at"` // zero means now
}

// AlertService runs the alert pipeline and serves alert queries
type AlertService interface {
	// GenerateAlerts scans the stock universe against its previous state and
	// creates alerts for material changes. Returns the number created.
	GenerateAlerts(ctx context.Context) (int, error)

	// ListAlerts returns alerts visible to the user, newest first
	ListAlerts(ctx context.Context, userID string, filter models.AlertFilter) ([]*models.Alert, error)

	// MarkRead flags an alert as read
	MarkRead(ctx context.Context, userID, alertID string) error

	// Dismiss hides an alert from default listings
	Dismiss(ctx context.Context, userID, alertID string) error

	// UnreadCount returns the user's unread alert count
	UnreadCount(ctx context.Context, userID string) (int, error)

	// PurgeOld removes alerts older than the retention window. Returns the
	// number removed.
	PurgeOld(ctx context.Context, retention time.Duration) (int, error)
}

// BacktestService manages strategy simulations
type BacktestService interface {
	// CreateBacktest validates parameters, persists a pending run, and
	// enqueues it for execution
	CreateBacktest(ctx context.Context, userID string, params models.BacktestParams) (*models.Backtest, error)

	// GetBacktest retrieves a run owned by the user
	GetBacktest(ctx context.Context, userID, id string) (*models.Backtest, error)

	// ListBacktests returns the user's runs, newest first
	ListBacktests(ctx context.Context, userID string, limit int) ([]*models.Backtest, error)

	// DeleteBacktest removes a terminal run owned by the user
	DeleteBacktest(ctx context.Context, userID, id string) error

	// ExecuteBacktest runs a pending backtest to completion. Called by the
	// job runner, not by handlers.
	ExecuteBacktest(ctx context.Context, id string) error

	// RenderChart renders the performance series of a completed run as a
	// PNG image
	RenderChart(ctx context.Context, userID, id string) ([]byte, error)
}

// WatchlistService manages per-user tracked stocks
type WatchlistService interface {
	// GetWatchlist returns the user's watchlist, creating an empty one on
	// first access
	GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error)

	// AddItem upserts a tracked stock keyed on ticker
	AddItem(ctx context.Context, userID, ticker, note string) (*models.Watchlist, error)

	// RemoveItem drops a tracked stock
	RemoveItem(ctx context.Context, userID, ticker string) (*models.Watchlist, error)
}
