package models

import "time"

// Backtest status constants. State machine:
// pending → running → {completed | failed}. Terminal states are final;
// a re-run means creating a new Backtest.
const (
	BacktestStatusPending   = "pending"
	BacktestStatusRunning   = "running"
	BacktestStatusCompleted = "completed"
	BacktestStatusFailed    = "failed"
)

// Strategy identifiers. Accepted and persisted, but inert in the
// simulation — placeholder configuration pending a real execution engine.
const (
	StrategyBuyAndHold     = "buy_and_hold"
	StrategyMomentum       = "momentum"
	StrategyMeanReversion  = "mean_reversion"
	StrategyTierBased      = "tier_based"
	StrategyVolumeBreakout = "volume_breakout"
)

// Rebalance frequency identifiers. Inert, like Strategy.
const (
	RebalanceDaily     = "daily"
	RebalanceWeekly    = "weekly"
	RebalanceMonthly   = "monthly"
	RebalanceQuarterly = "quarterly"
)

// ValidStrategy reports whether id names a known strategy.
func ValidStrategy(id string) bool {
	switch id {
	case StrategyBuyAndHold, StrategyMomentum, StrategyMeanReversion,
		StrategyTierBased, StrategyVolumeBreakout:
		return true
	}
	return false
}

// ValidRebalanceFrequency reports whether id names a known frequency.
func ValidRebalanceFrequency(id string) bool {
	switch id {
	case RebalanceDaily, RebalanceWeekly, RebalanceMonthly, RebalanceQuarterly:
		return true
	}
	return false
}

// RiskManagement thresholds. Stored with the backtest but not applied by
// the simulation.
type RiskManagement struct {
	StopLossPct        float64 `json:"stop_loss_pct"`
	TakeProfitPct      float64 `json:"take_profit_pct"`
	MaxPositionSizePct float64 `json:"max_position_size_pct"`
}

// BacktestParams configures a simulated run.
type BacktestParams struct {
	Name               string         `json:"name"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            time.Time      `json:"end_date"`
	InitialCapital     float64        `json:"initial_capital"`
	Strategy           string         `json:"strategy"`
	Stocks             []string       `json:"stocks"` // tickers, non-empty
	RiskManagement     RiskManagement `json:"risk_management"`
	RebalanceFrequency string         `json:"rebalance_frequency"`
}

// PerformancePoint is one weekly sample of the simulated run.
type PerformancePoint struct {
	Date           time.Time `json:"date"`
	PortfolioValue float64   `json:"portfolio_value"`
	BenchmarkValue float64   `json:"benchmark_value"`
}

// BacktestMetrics summarizes a completed run. All values are derived from
// the performance series, not sampled independently.
type BacktestMetrics struct {
	FinalValue          float64 `json:"final_value"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	WinRatePct          float64 `json:"win_rate_pct"`
	TradeCount          int     `json:"trade_count"`
}

// BacktestResults bundles the series and its summary statistics.
type BacktestResults struct {
	PerformanceSeries []PerformancePoint `json:"performance_series"`
	Metrics           BacktestMetrics    `json:"metrics"`
}

// Backtest is a user's simulated strategy run.
type Backtest struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Name        string           `json:"name"`
	Params      BacktestParams   `json:"params"`
	Status      string           `json:"status"`
	Results     *BacktestResults `json:"results,omitempty"` // nil until completed
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt time.Time        `json:"completed_at"`
}

// IsTerminal reports whether the backtest has reached a final status.
func (b *Backtest) IsTerminal() bool {
	return b.Status == BacktestStatusCompleted || b.Status == BacktestStatusFailed
}
