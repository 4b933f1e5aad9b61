package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// BacktestStore persists backtest runs and their results.
type BacktestStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewBacktestStore creates a new BacktestStore.
func NewBacktestStore(db *surrealdb.DB, logger *common.Logger) *BacktestStore {
	return &BacktestStore{db: db, logger: logger}
}

func (s *BacktestStore) Create(ctx context.Context, backtest *models.Backtest) error {
	if backtest.ID == "" {
		backtest.ID = uuid.New().String()[:8]
	}
	if backtest.CreatedAt.IsZero() {
		backtest.CreatedAt = time.Now()
	}
	if backtest.Status == "" {
		backtest.Status = models.BacktestStatusPending
	}

	sql := "CREATE type::record('backtest', $id) CONTENT $backtest"
	vars := map[string]any{"id": backtest.ID, "backtest": backtest}

	if _, err := surrealdb.Query[[]models.Backtest](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create backtest: %w", err)
	}
	return nil
}

func (s *BacktestStore) Get(ctx context.Context, id string) (*models.Backtest, error) {
	bt, err := surrealdb.Select[models.Backtest](ctx, s.db, surrealmodels.NewRecordID("backtest", id))
	if err != nil {
		return nil, fmt.Errorf("failed to select backtest: %w", err)
	}
	if bt == nil || bt.ID == "" {
		return nil, ErrNotFound
	}
	return bt, nil
}

func (s *BacktestStore) List(ctx context.Context, userID string, limit int) ([]*models.Backtest, error) {
	if limit <= 0 {
		limit = 50
	}
	sql := "SELECT * FROM backtest WHERE user_id = $user_id ORDER BY created_at DESC LIMIT $limit"
	vars := map[string]any{"user_id": userID, "limit": limit}

	results, err := surrealdb.Query[[]models.Backtest](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtests: %w", err)
	}

	var backtests []*models.Backtest
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			backtests = append(backtests, &(*results)[0].Result[i])
		}
	}
	return backtests, nil
}

func (s *BacktestStore) UpdateStatus(ctx context.Context, id, status string) error {
	sql := "UPDATE $rid SET status = $status"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("backtest", id),
		"status": status,
	}

	if _, err := surrealdb.Query[[]models.Backtest](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update backtest status: %w", err)
	}
	return nil
}

func (s *BacktestStore) SaveResults(ctx context.Context, id string, results *models.BacktestResults) error {
	sql := "UPDATE $rid SET status = $status, results = $results, completed_at = $now"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("backtest", id),
		"status":  models.BacktestStatusCompleted,
		"results": results,
		"now":     time.Now(),
	}

	if _, err := surrealdb.Query[[]models.Backtest](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save backtest results: %w", err)
	}
	return nil
}

func (s *BacktestStore) MarkFailed(ctx context.Context, id, reason string) error {
	sql := "UPDATE $rid SET status = $status, error = $error, completed_at = $now"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("backtest", id),
		"status": models.BacktestStatusFailed,
		"error":  reason,
		"now":    time.Now(),
	}

	if _, err := surrealdb.Query[[]models.Backtest](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to mark backtest failed: %w", err)
	}
	return nil
}

func (s *BacktestStore) Delete(ctx context.Context, id string) error {
	_, err := surrealdb.Delete[models.Backtest](ctx, s.db, surrealmodels.NewRecordID("backtest", id))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete backtest: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.BacktestStore = (*BacktestStore)(nil)
