package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// TradeStore persists the immutable trade log. Rows are only ever created.
type TradeStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(db *surrealdb.DB, logger *common.Logger) *TradeStore {
	return &TradeStore{db: db, logger: logger}
}

func (s *TradeStore) Create(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.New().String()[:8]
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	trade.Ticker = models.NormalizeTicker(trade.Ticker)

	sql := "CREATE type::record('trade', $id) CONTENT $trade"
	vars := map[string]any{"id": trade.ID, "trade": trade}

	if _, err := surrealdb.Query[[]models.Trade](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (s *TradeStore) List(ctx context.Context, userID string, limit int) ([]*models.Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	sql := "SELECT * FROM trade WHERE user_id = $user_id ORDER BY executed_at DESC LIMIT $limit"
	vars := map[string]any{"user_id": userID, "limit": limit}
	return s.queryTrades(ctx, sql, vars)
}

func (s *TradeStore) ListByTicker(ctx context.Context, userID, ticker string, limit int) ([]*models.Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	sql := "SELECT * FROM trade WHERE user_id = $user_id AND ticker = $ticker ORDER BY executed_at DESC LIMIT $limit"
	vars := map[string]any{
		"user_id": userID,
		"ticker":  models.NormalizeTicker(ticker),
		"limit":   limit,
	}
	return s.queryTrades(ctx, sql, vars)
}

func (s *TradeStore) queryTrades(ctx context.Context, sql string, vars map[string]any) ([]*models.Trade, error) {
	results, err := surrealdb.Query[[]models.Trade](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}

	var trades []*models.Trade
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			trades = append(trades, &(*results)[0].Result[i])
		}
	}
	return trades, nil
}

// Compile-time check
var _ interfaces.TradeStore = (*TradeStore)(nil)
