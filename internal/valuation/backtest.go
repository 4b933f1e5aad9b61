package valuation

import (
	"math"
	"math/rand"
	"time"

	"github.com/accraquant/sika/internal/models"
)

// Simulation constants. The portfolio walks a ±2% uniform weekly step; the
// benchmark compounds at a fixed 8% annual rate, independent of the random
// source.
const (
	weeklyStepDays      = 7
	weeklyStepMaxReturn = 0.02
	benchmarkAnnualRate = 0.08
	weeksPerYear        = 52
)

// Simulator produces synthetic backtest results. The random source is
// injectable so tests can run deterministically; a nil source falls back to
// a time-seeded generator.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator creates a simulator with the given random source.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rng: rng}
}

// ValidateParams checks backtest parameters without running anything.
// Failures here happen before any mutation in the surrounding system.
func ValidateParams(p models.BacktestParams) error {
	if !p.EndDate.After(p.StartDate) {
		return ErrInvalidDateRange
	}
	if p.InitialCapital <= 0 {
		return ErrInvalidCapital
	}
	if len(p.Stocks) == 0 {
		return ErrNoStocksSelected
	}
	return nil
}

// Run validates the parameters and produces a weekly performance series with
// summary metrics. The strategy, risk-management, and rebalance-frequency
// fields are carried in the persisted params but do not influence the walk.
//
// The series starts at the initial capital and samples every 7 days up to and
// including the boundary nearest the total day count. Summary metrics are
// computed from the produced series, not sampled independently.
func (s *Simulator) Run(p models.BacktestParams) (*models.BacktestResults, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}

	totalDays := int(p.EndDate.Sub(p.StartDate).Hours() / 24)
	if totalDays <= 0 {
		// Sub-day ranges leave the annualization exponent undefined.
		return nil, ErrInvalidDateRange
	}

	series := make([]models.PerformancePoint, 0, totalDays/weeklyStepDays+1)
	value := p.InitialCapital
	for elapsed := 0; elapsed <= totalDays; elapsed += weeklyStepDays {
		if elapsed > 0 {
			r := s.rng.Float64()*2*weeklyStepMaxReturn - weeklyStepMaxReturn
			value *= 1 + r
		}
		series = append(series, models.PerformancePoint{
			Date:           p.StartDate.AddDate(0, 0, elapsed),
			PortfolioValue: value,
			BenchmarkValue: p.InitialCapital * math.Pow(1+benchmarkAnnualRate, float64(elapsed)/365),
		})
	}

	final := series[len(series)-1].PortfolioValue
	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.PortfolioValue
	}
	returns := PeriodicReturns(values)

	metrics := models.BacktestMetrics{
		FinalValue:          final,
		TotalReturnPct:      (final - p.InitialCapital) / p.InitialCapital * 100,
		AnnualizedReturnPct: (math.Pow(final/p.InitialCapital, 365/float64(totalDays)) - 1) * 100,
		SharpeRatio:         SharpeRatio(returns, weeksPerYear),
		MaxDrawdownPct:      MaxDrawdown(values),
		WinRatePct:          WinRate(returns),
		TradeCount:          len(returns),
	}

	return &models.BacktestResults{
		PerformanceSeries: series,
		Metrics:           metrics,
	}, nil
}
