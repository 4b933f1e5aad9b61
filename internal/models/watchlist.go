package models

import "time"

// WatchlistItem is a tracked stock with an optional user note.
type WatchlistItem struct {
	Ticker  string    `json:"ticker"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Watchlist is a user's tracked-stock list. Items upsert keyed on ticker.
type Watchlist struct {
	UserID    string          `json:"user_id"`
	Items     []WatchlistItem `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FindByTicker returns the item with the given ticker and its index,
// or a zero item and -1 when absent.
func (w *Watchlist) FindByTicker(ticker string) (WatchlistItem, int) {
	ticker = NormalizeTicker(ticker)
	for i, item := range w.Items {
		if item.Ticker == ticker {
			return item, i
		}
	}
	return WatchlistItem{}, -1
}
