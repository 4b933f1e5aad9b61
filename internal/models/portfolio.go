package models

import "time"

// Position is a user's aggregated holding in one stock. One row per
// (user, ticker) — repeated buys and sells fold into the weighted-average
// cost, they never append rows.
type Position struct {
	UserID    string    `json:"user_id"`
	Ticker    string    `json:"ticker"`
	Shares    float64   `json:"shares"`   // > 0
	AvgCost   float64   `json:"avg_cost"` // > 0
	UpdatedAt time.Time `json:"updated_at"`
}

// Trade type constants
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Trade is an immutable record of an executed buy or sell. Recording a
// trade also folds it into the matching Position; the trade row itself is
// history only and is never edited.
type Trade struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Ticker     string    `json:"ticker"`
	TradeType  string    `json:"trade_type"` // "buy" or "sell"
	Shares     float64   `json:"shares"`
	Price      float64   `json:"price"`
	Fees       float64   `json:"fees"`
	ExecutedAt time.Time `json:"executed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// PositionView is a position enriched with live quote data and derived
// metrics for dashboard display. Computed on response, not persisted.
type PositionView struct {
	Position
	Name            string  `json:"name"`
	Tier            Tier    `json:"tier"`
	CurrentPrice    float64 `json:"current_price"`
	MarketValue     float64 `json:"market_value"`
	CostBasis       float64 `json:"cost_basis"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
	WeightPercent   float64 `json:"weight_percent"` // share of total portfolio value
}

// PortfolioSummary aggregates a user's positions. Computed on response,
// not persisted.
type PortfolioSummary struct {
	UserID               string    `json:"user_id"`
	TotalValue           float64   `json:"total_value"`
	TotalCost            float64   `json:"total_cost"`
	TotalGainLoss        float64   `json:"total_gain_loss"`
	TotalGainLossPercent float64   `json:"total_gain_loss_percent"`
	Winners              int       `json:"winners"`
	Losers               int       `json:"losers"`
	PositionCount        int       `json:"position_count"`
	AsOf                 time.Time `json:"as_of"`
}
