package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// StockStore manages the shared stock universe and daily price history.
type StockStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewStockStore creates a new StockStore.
func NewStockStore(db *surrealdb.DB, logger *common.Logger) *StockStore {
	return &StockStore{db: db, logger: logger}
}

func (s *StockStore) Get(ctx context.Context, ticker string) (*models.Stock, error) {
	ticker = models.NormalizeTicker(ticker)
	stock, err := surrealdb.Select[models.Stock](ctx, s.db, surrealmodels.NewRecordID("stock", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select stock: %w", err)
	}
	if stock == nil || stock.Ticker == "" {
		return nil, ErrNotFound
	}
	return stock, nil
}

func (s *StockStore) Upsert(ctx context.Context, stock *models.Stock) error {
	stock.Ticker = models.NormalizeTicker(stock.Ticker)

	sql := "UPSERT type::record('stock', $id) CONTENT $stock"
	vars := map[string]any{"id": stock.Ticker, "stock": stock}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to upsert stock after retries: %w", err)
		}
	}
	return nil
}

func (s *StockStore) List(ctx context.Context, filter models.StockFilter) ([]*models.Stock, error) {
	sql := "SELECT * FROM stock"
	vars := map[string]any{}

	var where []string
	if filter.ActiveOnly {
		where = append(where, "is_active = true")
	}
	if filter.Sector != "" {
		where = append(where, "sector = $sector")
		vars["sector"] = filter.Sector
	}
	if filter.Tier != "" {
		where = append(where, "tier = $tier")
		vars["tier"] = string(filter.Tier)
	}
	for i, cond := range where {
		if i == 0 {
			sql += " WHERE " + cond
		} else {
			sql += " AND " + cond
		}
	}
	sql += " ORDER BY score DESC"
	if filter.Limit > 0 {
		sql += " LIMIT $limit"
		vars["limit"] = filter.Limit
	}

	results, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}

	var stocks []*models.Stock
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			stocks = append(stocks, &(*results)[0].Result[i])
		}
	}
	return stocks, nil
}

func (s *StockStore) ListTickers(ctx context.Context) ([]string, error) {
	list, err := surrealdb.Select[[]models.Stock](ctx, s.db, surrealmodels.Table("stock"))
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	var tickers []string
	if list != nil {
		for _, st := range *list {
			if st.Ticker != "" {
				tickers = append(tickers, st.Ticker)
			}
		}
	}
	return tickers, nil
}

func (s *StockStore) MarkInactive(ctx context.Context, ticker string) error {
	sql := "UPDATE $rid SET is_active = false, updated_at = $now"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("stock", models.NormalizeTicker(ticker)),
		"now": time.Now(),
	}

	if _, err := surrealdb.Query[[]models.Stock](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to mark stock inactive: %w", err)
	}
	return nil
}

// priceID keys price_history rows on ticker and day so re-syncs upsert
// instead of duplicating.
func priceID(ticker string, date time.Time) string {
	return ticker + "_" + date.Format("20060102")
}

func (s *StockStore) AppendPriceHistory(ctx context.Context, points []models.PricePoint) error {
	for _, pt := range points {
		pt.Ticker = models.NormalizeTicker(pt.Ticker)

		sql := "UPSERT type::record('price_history', $id) CONTENT $point"
		vars := map[string]any{"id": priceID(pt.Ticker, pt.Date), "point": pt}

		if _, err := surrealdb.Query[[]models.PricePoint](ctx, s.db, sql, vars); err != nil {
			return fmt.Errorf("failed to append price history for %s: %w", pt.Ticker, err)
		}
	}
	return nil
}

func (s *StockStore) GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.PricePoint, error) {
	sql := "SELECT * FROM price_history WHERE ticker = $ticker AND date >= $from AND date <= $to ORDER BY date ASC"
	vars := map[string]any{
		"ticker": models.NormalizeTicker(ticker),
		"from":   from,
		"to":     to,
	}

	results, err := surrealdb.Query[[]models.PricePoint](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

// Compile-time check
var _ interfaces.StockStore = (*StockStore)(nil)
