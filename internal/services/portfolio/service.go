// Package portfolio manages per-user holdings, trade recording, and
// portfolio valuation against live quotes.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/storage/surrealdb"
	"github.com/accraquant/sika/internal/valuation"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Validation errors surfaced to handlers.
var (
	ErrUnknownTicker    = errors.New("unknown ticker")
	ErrInvalidTradeType = errors.New("trade type must be buy or sell")
	ErrInvalidPosition  = errors.New("shares and avg_cost must be positive")
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetPositions returns the user's holdings enriched with live metrics.
// A position whose stock has no usable quote is returned with zero
// derived metrics rather than dropped, so holdings never silently vanish
// from the dashboard.
func (s *Service) GetPositions(ctx context.Context, userID string) ([]*models.PositionView, error) {
	positions, err := s.storage.PositionStore().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	views := make([]*models.PositionView, 0, len(positions))
	var totalValue float64

	for _, pos := range positions {
		view := &models.PositionView{Position: *pos}

		stock, err := s.storage.StockStore().Get(ctx, pos.Ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", pos.Ticker).Err(err).Msg("Position references unknown stock")
			views = append(views, view)
			continue
		}

		view.Name = stock.Name
		view.Tier = stock.Tier
		view.CurrentPrice = stock.CurrentPrice

		metrics, err := valuation.ComputePositionMetrics(pos.Shares, pos.AvgCost, stock.CurrentPrice)
		if err != nil {
			s.logger.Warn().Str("ticker", pos.Ticker).Err(err).Msg("Position metrics unavailable")
			views = append(views, view)
			continue
		}

		view.MarketValue = metrics.MarketValue
		view.CostBasis = metrics.CostBasis
		view.GainLoss = metrics.GainLoss
		view.GainLossPercent = metrics.GainLossPercent
		totalValue += metrics.MarketValue

		views = append(views, view)
	}

	if totalValue > 0 {
		for _, v := range views {
			v.WeightPercent = v.MarketValue / totalValue * 100
		}
	}

	return views, nil
}

// GetSummary aggregates the user's positions against live quotes. An empty
// portfolio is a normal state and returns an all-zero summary.
func (s *Service) GetSummary(ctx context.Context, userID string) (*models.PortfolioSummary, error) {
	positions, err := s.storage.PositionStore().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	quoted := make([]valuation.QuotedPosition, 0, len(positions))
	for _, pos := range positions {
		stock, err := s.storage.StockStore().Get(ctx, pos.Ticker)
		if err != nil || stock.CurrentPrice <= 0 {
			continue
		}
		quoted = append(quoted, valuation.QuotedPosition{
			Shares:       pos.Shares,
			AvgCost:      pos.AvgCost,
			CurrentPrice: stock.CurrentPrice,
		})
	}

	totals := valuation.AggregatePortfolio(quoted)

	return &models.PortfolioSummary{
		UserID:               userID,
		TotalValue:           totals.TotalValue,
		TotalCost:            totals.TotalCost,
		TotalGainLoss:        totals.TotalGainLoss,
		TotalGainLossPercent: totals.TotalGainLossPercent,
		Winners:              totals.Winners,
		Losers:               totals.Losers,
		PositionCount:        len(positions),
		AsOf:                 time.Now(),
	}, nil
}

// SetPosition directly upserts a holding, bypassing the trade log. Intended
// for importing holdings that predate the account; day-to-day changes go
// through RecordTrade.
func (s *Service) SetPosition(ctx context.Context, userID, ticker string, shares, avgCost float64) (*models.Position, error) {
	ticker = models.NormalizeTicker(ticker)

	if shares <= 0 || avgCost <= 0 {
		return nil, ErrInvalidPosition
	}
	if _, err := s.storage.StockStore().Get(ctx, ticker); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	pos := &models.Position{
		UserID:    userID,
		Ticker:    ticker,
		Shares:    shares,
		AvgCost:   avgCost,
		UpdatedAt: time.Now(),
	}
	if err := s.storage.PositionStore().Upsert(ctx, pos); err != nil {
		return nil, fmt.Errorf("failed to upsert position: %w", err)
	}

	s.logger.Info().
		Str("user", userID).
		Str("ticker", ticker).
		Float64("shares", shares).
		Msg("Position set directly")

	return pos, nil
}

// DeletePosition removes a holding without logging a trade.
func (s *Service) DeletePosition(ctx context.Context, userID, ticker string) error {
	ticker = models.NormalizeTicker(ticker)
	if err := s.storage.PositionStore().Delete(ctx, userID, ticker); err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// RecordTrade appends a trade to the log and folds it into the matching
// position. The trade row is written only after the position update
// succeeds, so the log never records a trade the position doesn't reflect.
func (s *Service) RecordTrade(ctx context.Context, userID string, req interfaces.TradeRequest) (*models.Trade, error) {
	ticker := models.NormalizeTicker(req.Ticker)

	if req.TradeType != models.TradeTypeBuy && req.TradeType != models.TradeTypeSell {
		return nil, ErrInvalidTradeType
	}
	if _, err := s.storage.StockStore().Get(ctx, ticker); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	// A missing position means this is the first trade in the ticker. Any
	// other store error must abort the trade, or a transient failure would
	// rebuild the position from zero and wipe out the real cost basis.
	var shares, avgCost float64
	existing, err := s.storage.PositionStore().Get(ctx, userID, ticker)
	switch {
	case err == nil:
		shares = existing.Shares
		avgCost = existing.AvgCost
	case !errors.Is(err, surrealdb.ErrNotFound):
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	newShares, newAvgCost, err := valuation.ApplyTrade(shares, avgCost, valuation.TradeInput{
		IsBuy:  req.TradeType == models.TradeTypeBuy,
		Shares: req.Shares,
		Price:  req.Price,
		Fees:   req.Fees,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if newShares == 0 {
		if err := s.storage.PositionStore().Delete(ctx, userID, ticker); err != nil {
			return nil, fmt.Errorf("failed to close position: %w", err)
		}
	} else {
		if err := s.storage.PositionStore().Upsert(ctx, &models.Position{
			UserID:    userID,
			Ticker:    ticker,
			Shares:    newShares,
			AvgCost:   newAvgCost,
			UpdatedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("failed to update position: %w", err)
		}
	}

	executedAt := req.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}

	trade := &models.Trade{
		UserID:     userID,
		Ticker:     ticker,
		TradeType:  req.TradeType,
		Shares:     req.Shares,
		Price:      req.Price,
		Fees:       req.Fees,
		ExecutedAt: executedAt,
	}
	if err := s.storage.TradeStore().Create(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}

	s.logger.Info().
		Str("user", userID).
		Str("ticker", ticker).
		Str("type", req.TradeType).
		Float64("shares", req.Shares).
		Msg("Trade recorded")

	return trade, nil
}

// ListTrades returns the user's trade history, newest first
func (s *Service) ListTrades(ctx context.Context, userID, ticker string, limit int) ([]*models.Trade, error) {
	if ticker != "" {
		return s.storage.TradeStore().ListByTicker(ctx, userID, ticker, limit)
	}
	return s.storage.TradeStore().List(ctx, userID, limit)
}
