// Package watchlist manages per-user tracked-stock lists.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/storage/surrealdb"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// ErrUnknownTicker is returned when adding a ticker not in the universe.
var ErrUnknownTicker = errors.New("unknown ticker")

// Service implements WatchlistService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetWatchlist returns the user's watchlist. First access creates an empty
// one rather than erroring, so clients never special-case new users.
func (s *Service) GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error) {
	wl, err := s.storage.WatchlistStore().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, surrealdb.ErrNotFound) {
			return &models.Watchlist{UserID: userID, Items: []models.WatchlistItem{}}, nil
		}
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return wl, nil
}

// AddItem upserts a tracked stock keyed on ticker. Re-adding an existing
// ticker updates the note but keeps the original AddedAt.
func (s *Service) AddItem(ctx context.Context, userID, ticker, note string) (*models.Watchlist, error) {
	ticker = models.NormalizeTicker(ticker)
	if _, err := s.storage.StockStore().Get(ctx, ticker); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	wl, err := s.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing, idx := wl.FindByTicker(ticker); idx >= 0 {
		existing.Note = note
		wl.Items[idx] = existing
	} else {
		wl.Items = append(wl.Items, models.WatchlistItem{
			Ticker:  ticker,
			Note:    note,
			AddedAt: time.Now(),
		})
	}

	if err := s.storage.WatchlistStore().Save(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	return wl, nil
}

// RemoveItem drops a tracked stock. Removing an absent ticker is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, ticker string) (*models.Watchlist, error) {
	ticker = models.NormalizeTicker(ticker)

	wl, err := s.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, idx := wl.FindByTicker(ticker)
	if idx < 0 {
		return wl, nil
	}
	wl.Items = append(wl.Items[:idx], wl.Items[idx+1:]...)

	if err := s.storage.WatchlistStore().Save(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	return wl, nil
}
