// Package market syncs the stock universe from the GSE feed and serves
// stock queries.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// Compile-time interface check
var _ interfaces.MarketService = (*Service)(nil)

// lastSyncKey is the system KV entry recording the last completed sync.
const lastSyncKey = "market_last_sync"

// Service implements MarketService
type Service struct {
	storage      interfaces.StorageManager
	feed         interfaces.MarketFeedClient
	logger       *common.Logger
	syncInterval time.Duration
}

// NewService creates a new market service. syncInterval is the freshness
// window for non-forced syncs.
func NewService(storage interfaces.StorageManager, feed interfaces.MarketFeedClient, logger *common.Logger, syncInterval time.Duration) *Service {
	if syncInterval <= 0 {
		syncInterval = time.Hour
	}
	return &Service{
		storage:      storage,
		feed:         feed,
		logger:       logger,
		syncInterval: syncInterval,
	}
}

// SyncStocks refreshes the stock universe from the GSE feed. Stocks present
// in storage but missing from the feed are marked inactive rather than
// deleted, so positions referencing them keep resolving.
func (s *Service) SyncStocks(ctx context.Context, force bool) (int, error) {
	if !force && s.isFresh(ctx) {
		s.logger.Debug().Msg("Market sync skipped, data is fresh")
		return 0, nil
	}

	equities, err := s.feed.ListEquities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list equities: %w", err)
	}

	quotes, err := s.feed.GetLiveQuotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get live quotes: %w", err)
	}
	liveByTicker := make(map[string]*models.LiveQuote, len(quotes))
	for _, q := range quotes {
		liveByTicker[q.Ticker] = q
	}

	now := time.Now()
	seen := make(map[string]bool, len(equities))
	count := 0
	var points []models.PricePoint

	for _, eq := range equities {
		stock := buildStock(eq, liveByTicker[eq.Ticker], now)
		seen[stock.Ticker] = true

		if err := s.storage.StockStore().Upsert(ctx, stock); err != nil {
			s.logger.Warn().Str("ticker", stock.Ticker).Err(err).Msg("Failed to upsert stock")
			continue
		}
		count++

		points = append(points, models.PricePoint{
			Ticker: stock.Ticker,
			Date:   now.Truncate(24 * time.Hour),
			Close:  stock.CurrentPrice,
			Volume: stock.Volume,
		})
	}

	if err := s.storage.StockStore().AppendPriceHistory(ctx, points); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to append price history")
	}

	// Delistings: anything stored but absent from the feed
	tickers, err := s.storage.StockStore().ListTickers(ctx)
	if err == nil {
		for _, t := range tickers {
			if !seen[t] {
				if err := s.storage.StockStore().MarkInactive(ctx, t); err != nil {
					s.logger.Warn().Str("ticker", t).Err(err).Msg("Failed to mark stock inactive")
				}
			}
		}
	}

	if err := s.storage.InternalStore().SetSystemKV(ctx, lastSyncKey, now.Format(time.RFC3339)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record sync timestamp")
	}

	s.logger.Info().Int("count", count).Msg("Market sync complete")
	return count, nil
}

// isFresh reports whether the last sync happened within the freshness window.
func (s *Service) isFresh(ctx context.Context) bool {
	val, err := s.storage.InternalStore().GetSystemKV(ctx, lastSyncKey)
	if err != nil {
		return false
	}
	last, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return false
	}
	return common.IsFresh(last, s.syncInterval)
}

// buildStock merges a listing record with its live quote into a scored Stock.
func buildStock(eq *models.EquityDetail, live *models.LiveQuote, now time.Time) *models.Stock {
	stock := &models.Stock{
		Ticker:        eq.Ticker,
		Name:          eq.Name,
		Sector:        eq.Sector,
		CurrentPrice:  eq.Price,
		MarketCap:     eq.MarketCap,
		PERatio:       eq.PERatio(),
		DividendYield: eq.DividendYield(),
		IsActive:      true,
		UpdatedAt:     now,
	}

	if live != nil {
		if live.Price > 0 {
			stock.CurrentPrice = live.Price
		}
		stock.PreviousClose = live.Price - live.Change
		stock.Volume = live.Volume
	}

	stock.Score = ComputeScore(stock)
	stock.Tier = models.TierForScore(stock.Score)
	return stock
}

// GetStock retrieves a single stock by ticker
func (s *Service) GetStock(ctx context.Context, ticker string) (*models.Stock, error) {
	stock, err := s.storage.StockStore().Get(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock %s: %w", models.NormalizeTicker(ticker), err)
	}
	return stock, nil
}

// ListStocks returns the stock universe, optionally filtered
func (s *Service) ListStocks(ctx context.Context, filter models.StockFilter) ([]*models.Stock, error) {
	stocks, err := s.storage.StockStore().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return stocks, nil
}

// GetPriceHistory retrieves daily closes for a ticker
func (s *Service) GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	points, err := s.storage.StockStore().GetPriceHistory(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	return points, nil
}
