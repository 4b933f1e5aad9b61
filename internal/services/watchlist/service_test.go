package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
	"github.com/accraquant/sika/internal/storage/surrealdb"
)

type fakeWatchlistStore struct {
	interfaces.WatchlistStore
	watchlists map[string]*models.Watchlist
}

func (f *fakeWatchlistStore) Get(ctx context.Context, userID string) (*models.Watchlist, error) {
	wl, ok := f.watchlists[userID]
	if !ok {
		return nil, surrealdb.ErrNotFound
	}
	return wl, nil
}

func (f *fakeWatchlistStore) Save(ctx context.Context, wl *models.Watchlist) error {
	wl.UpdatedAt = time.Now()
	f.watchlists[wl.UserID] = wl
	return nil
}

type fakeStockStore struct {
	interfaces.StockStore
	stocks map[string]*models.Stock
}

func (f *fakeStockStore) Get(ctx context.Context, ticker string) (*models.Stock, error) {
	s, ok := f.stocks[models.NormalizeTicker(ticker)]
	if !ok {
		return nil, surrealdb.ErrNotFound
	}
	return s, nil
}

type fakeStorage struct {
	interfaces.StorageManager
	watchlists *fakeWatchlistStore
	stocks     *fakeStockStore
}

func newFakeStorage(tickers ...string) *fakeStorage {
	stocks := make(map[string]*models.Stock)
	for _, t := range tickers {
		stocks[t] = &models.Stock{Ticker: t, IsActive: true}
	}
	return &fakeStorage{
		watchlists: &fakeWatchlistStore{watchlists: make(map[string]*models.Watchlist)},
		stocks:     &fakeStockStore{stocks: stocks},
	}
}

func (f *fakeStorage) WatchlistStore() interfaces.WatchlistStore { return f.watchlists }
func (f *fakeStorage) StockStore() interfaces.StockStore         { return f.stocks }

func newTestService(storage *fakeStorage) *Service {
	return NewService(storage, common.NewSilentLogger())
}

func TestGetWatchlist_FirstAccessEmpty(t *testing.T) {
	svc := newTestService(newFakeStorage())

	wl, err := svc.GetWatchlist(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetWatchlist failed: %v", err)
	}
	if wl.UserID != "user1" {
		t.Errorf("expected user1, got %s", wl.UserID)
	}
	if wl.Items == nil || len(wl.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", wl.Items)
	}
}

func TestAddItem(t *testing.T) {
	storage := newFakeStorage("GCB", "MTNGH")
	svc := newTestService(storage)
	ctx := context.Background()

	wl, err := svc.AddItem(ctx, "user1", " gcb ", "bank play")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if len(wl.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(wl.Items))
	}
	item := wl.Items[0]
	if item.Ticker != "GCB" {
		t.Errorf("expected normalized GCB, got %s", item.Ticker)
	}
	if item.Note != "bank play" {
		t.Errorf("expected note kept, got %q", item.Note)
	}
	if item.AddedAt.IsZero() {
		t.Error("expected added_at set")
	}

	// Persisted
	if _, ok := storage.watchlists.watchlists["user1"]; !ok {
		t.Error("expected watchlist saved")
	}
}

func TestAddItem_UnknownTicker(t *testing.T) {
	svc := newTestService(newFakeStorage("GCB"))

	_, err := svc.AddItem(context.Background(), "user1", "NOPE", "")
	if !errors.Is(err, ErrUnknownTicker) {
		t.Fatalf("expected ErrUnknownTicker, got %v", err)
	}
}

func TestAddItem_ReAddUpdatesNoteKeepsAddedAt(t *testing.T) {
	storage := newFakeStorage("GCB")
	svc := newTestService(storage)
	ctx := context.Background()

	wl, err := svc.AddItem(ctx, "user1", "GCB", "first note")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	originalAddedAt := wl.Items[0].AddedAt

	wl, err = svc.AddItem(ctx, "user1", "GCB", "second note")
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if len(wl.Items) != 1 {
		t.Fatalf("re-add must not duplicate, got %d items", len(wl.Items))
	}
	if wl.Items[0].Note != "second note" {
		t.Errorf("expected note updated, got %q", wl.Items[0].Note)
	}
	if !wl.Items[0].AddedAt.Equal(originalAddedAt) {
		t.Error("re-add must keep the original added_at")
	}
}

func TestRemoveItem(t *testing.T) {
	storage := newFakeStorage("GCB", "MTNGH")
	svc := newTestService(storage)
	ctx := context.Background()

	svc.AddItem(ctx, "user1", "GCB", "")
	svc.AddItem(ctx, "user1", "MTNGH", "")

	wl, err := svc.RemoveItem(ctx, "user1", "gcb")
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(wl.Items) != 1 || wl.Items[0].Ticker != "MTNGH" {
		t.Errorf("expected only MTNGH left, got %v", wl.Items)
	}
}

func TestRemoveItem_AbsentTickerNoop(t *testing.T) {
	storage := newFakeStorage("GCB")
	svc := newTestService(storage)
	ctx := context.Background()

	svc.AddItem(ctx, "user1", "GCB", "")

	wl, err := svc.RemoveItem(ctx, "user1", "MTNGH")
	if err != nil {
		t.Fatalf("RemoveItem must tolerate absent tickers: %v", err)
	}
	if len(wl.Items) != 1 {
		t.Errorf("expected watchlist unchanged, got %v", wl.Items)
	}
}

func TestWatchlists_UserScoped(t *testing.T) {
	storage := newFakeStorage("GCB")
	svc := newTestService(storage)
	ctx := context.Background()

	svc.AddItem(ctx, "user1", "GCB", "")

	wl, err := svc.GetWatchlist(ctx, "user2")
	if err != nil {
		t.Fatalf("GetWatchlist failed: %v", err)
	}
	if len(wl.Items) != 0 {
		t.Errorf("user2 must not see user1's items, got %v", wl.Items)
	}
}
