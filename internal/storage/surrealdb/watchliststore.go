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

// WatchlistStore manages per-user watchlists, one record per user.
type WatchlistStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(db *surrealdb.DB, logger *common.Logger) *WatchlistStore {
	return &WatchlistStore{db: db, logger: logger}
}

func (s *WatchlistStore) Get(ctx context.Context, userID string) (*models.Watchlist, error) {
	wl, err := surrealdb.Select[models.Watchlist](ctx, s.db, surrealmodels.NewRecordID("watchlist", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select watchlist: %w", err)
	}
	if wl == nil || wl.UserID == "" {
		return nil, ErrNotFound
	}
	return wl, nil
}

func (s *WatchlistStore) Save(ctx context.Context, watchlist *models.Watchlist) error {
	watchlist.UpdatedAt = time.Now()

	sql := "UPSERT type::record('watchlist', $id) CONTENT $watchlist"
	vars := map[string]any{"id": watchlist.UserID, "watchlist": watchlist}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Watchlist](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save watchlist after retries: %w", err)
		}
	}
	return nil
}

// Compile-time check
var _ interfaces.WatchlistStore = (*WatchlistStore)(nil)
