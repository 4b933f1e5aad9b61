// Package interfaces defines service contracts for Sika
package interfaces

import (
	"context"

	"github.com/accraquant/sika/internal/models"
)

// MarketFeedClient provides access to the GSE market data API
type MarketFeedClient interface {
	// GetLiveQuotes retrieves the current live board for all listed equities
	GetLiveQuotes(ctx context.Context) ([]*models.LiveQuote, error)

	// GetLiveQuote retrieves the live quote for a single ticker
	GetLiveQuote(ctx context.Context, ticker string) (*models.LiveQuote, error)

	// ListEquities retrieves the full listing records for all equities
	ListEquities(ctx context.Context) ([]*models.EquityDetail, error)

	// GetEquity retrieves the full listing record for one equity
	GetEquity(ctx context.Context, ticker string) (*models.EquityDetail, error)
}
