// Package valuation implements the portfolio valuation and backtest metrics
// engine. Every function is pure: all inputs are explicit arguments, there is
// no session state, no storage access, and no clock dependency beyond the
// dates passed in.
package valuation

import "errors"

// Validation errors. All are detected synchronously before any mutation in
// the surrounding system and are never retried.
var (
	ErrInvalidQuote       = errors.New("invalid quote: price must be positive")
	ErrDivisionByZero     = errors.New("cost basis is zero")
	ErrInvalidDateRange   = errors.New("end date must be after start date")
	ErrInvalidCapital     = errors.New("initial capital must be positive")
	ErrNoStocksSelected   = errors.New("at least one stock must be selected")
	ErrInsufficientShares = errors.New("insufficient shares to sell")
)

// PositionMetrics holds the derived values for a single holding.
type PositionMetrics struct {
	MarketValue     float64
	CostBasis       float64
	GainLoss        float64
	GainLossPercent float64
}

// ComputePositionMetrics derives market value, cost basis, and gain/loss for
// one position. A non-positive current price means the upstream quote is
// corrupt and fails with ErrInvalidQuote. The cost-basis guard cannot fire
// when shares > 0 and avgCost > 0, but is kept explicit.
func ComputePositionMetrics(shares, avgCost, currentPrice float64) (PositionMetrics, error) {
	if currentPrice <= 0 {
		return PositionMetrics{}, ErrInvalidQuote
	}

	m := PositionMetrics{
		MarketValue: shares * currentPrice,
		CostBasis:   shares * avgCost,
	}
	m.GainLoss = m.MarketValue - m.CostBasis

	if m.CostBasis == 0 {
		return PositionMetrics{}, ErrDivisionByZero
	}
	m.GainLossPercent = m.GainLoss / m.CostBasis * 100

	return m, nil
}

// QuotedPosition is a holding paired with its current quote, the input unit
// for portfolio aggregation.
type QuotedPosition struct {
	Shares       float64
	AvgCost      float64
	CurrentPrice float64
}

// PortfolioTotals aggregates a set of quoted positions.
type PortfolioTotals struct {
	TotalValue           float64
	TotalCost            float64
	TotalGainLoss        float64
	TotalGainLossPercent float64
	Winners              int // positions with current price above avg cost
	Losers               int // positions with current price below avg cost
}

// AggregatePortfolio sums position values and cost bases. Unlike the
// per-position computation, a zero total cost basis is not an error here:
// an empty portfolio is a normal state and yields an all-zero result.
// Positions trading exactly at their average cost count as neither winner
// nor loser.
func AggregatePortfolio(positions []QuotedPosition) PortfolioTotals {
	var t PortfolioTotals
	for _, p := range positions {
		t.TotalValue += p.Shares * p.CurrentPrice
		t.TotalCost += p.Shares * p.AvgCost
		if p.CurrentPrice > p.AvgCost {
			t.Winners++
		} else if p.CurrentPrice < p.AvgCost {
			t.Losers++
		}
	}
	t.TotalGainLoss = t.TotalValue - t.TotalCost
	if t.TotalCost > 0 {
		t.TotalGainLossPercent = t.TotalGainLoss / t.TotalCost * 100
	}
	return t
}
