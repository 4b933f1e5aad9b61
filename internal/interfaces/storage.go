// Package interfaces defines service contracts for Sika
package interfaces

import (
	"context"
	"time"

	"github.com/accraquant/sika/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	// Storage accessors
	InternalStore() InternalStore
	StockStore() StockStore
	PositionStore() PositionStore
	TradeStore() TradeStore
	AlertStore() AlertStore
	BacktestStore() BacktestStore
	WatchlistStore() WatchlistStore
	JobQueueStore() JobQueueStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}

// StockStore handles the shared stock universe and price history.
type StockStore interface {
	Get(ctx context.Context, ticker string) (*models.Stock, error)
	Upsert(ctx context.Context, stock *models.Stock) error
	List(ctx context.Context, filter models.StockFilter) ([]*models.Stock, error)
	ListTickers(ctx context.Context) ([]string, error)
	MarkInactive(ctx context.Context, ticker string) error

	// Price history
	AppendPriceHistory(ctx context.Context, points []models.PricePoint) error
	GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error)
}

// PositionStore manages per-user holdings, one row per (user, ticker).
type PositionStore interface {
	Get(ctx context.Context, userID, ticker string) (*models.Position, error)
	Upsert(ctx context.Context, position *models.Position) error
	Delete(ctx context.Context, userID, ticker string) error
	List(ctx context.Context, userID string) ([]*models.Position, error)
}

// TradeStore persists the immutable trade log.
type TradeStore interface {
	Create(ctx context.Context, trade *models.Trade) error
	List(ctx context.Context, userID string, limit int) ([]*models.Trade, error)
	ListByTicker(ctx context.Context, userID, ticker string, limit int) ([]*models.Trade, error)
}

// AlertStore manages alerts produced by the alert pipeline.
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	Get(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, userID string, filter models.AlertFilter) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id string) error
	MarkDismissed(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// BacktestStore persists backtest runs and their results.
type BacktestStore interface {
	Create(ctx context.Context, backtest *models.Backtest) error
	Get(ctx context.Context, id string) (*models.Backtest, error)
	List(ctx context.Context, userID string, limit int) ([]*models.Backtest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveResults(ctx context.Context, id string, results *models.BacktestResults) error
	MarkFailed(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}

// WatchlistStore manages per-user watchlists.
type WatchlistStore interface {
	Get(ctx context.Context, userID string) (*models.Watchlist, error)
	Save(ctx context.Context, watchlist *models.Watchlist) error
}

// JobQueueStore manages the persistent job queue
type JobQueueStore interface {
	Enqueue(ctx context.Context, job *models.Job) error
	Dequeue(ctx context.Context) (*models.Job, error) // Atomic: get highest priority pending, set to running
	Complete(ctx context.Context, id string, jobErr error, durationMS int64) error
	Cancel(ctx context.Context, id string) error
	ListPending(ctx context.Context, limit int) ([]*models.Job, error)
	ListAll(ctx context.Context, limit int) ([]*models.Job, error)
	CountPending(ctx context.Context) (int, error)
	HasPendingJob(ctx context.Context, jobType, key string) (bool, error)
	PurgeCompleted(ctx context.Context, olderThan time.Time) (int, error)
	ResetRunningJobs(ctx context.Context) (int, error)
}
