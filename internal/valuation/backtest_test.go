package valuation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accraquant/sika/internal/models"
)

func validParams() models.BacktestParams {
	return models.BacktestParams{
		StartDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		InitialCapital:     10000,
		Stocks:             []string{"GCB", "MTNGH"},
		Strategy:           models.StrategyBuyAndHold,
		RebalanceFrequency: models.RebalanceMonthly,
	}
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.BacktestParams)
		wantErr error
	}{
		{"valid", func(p *models.BacktestParams) {}, nil},
		{"end before start", func(p *models.BacktestParams) {
			p.EndDate = p.StartDate.AddDate(0, 0, -1)
		}, ErrInvalidDateRange},
		{"end equals start", func(p *models.BacktestParams) {
			p.EndDate = p.StartDate
		}, ErrInvalidDateRange},
		{"zero capital", func(p *models.BacktestParams) {
			p.InitialCapital = 0
		}, ErrInvalidCapital},
		{"negative capital", func(p *models.BacktestParams) {
			p.InitialCapital = -100
		}, ErrInvalidCapital},
		{"no stocks", func(p *models.BacktestParams) {
			p.Stocks = nil
		}, ErrNoStocksSelected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := ValidateParams(p)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Date-range validation runs before capital validation, so a request with
// multiple problems reports the date error.
func TestValidateParams_Order(t *testing.T) {
	p := validParams()
	p.EndDate = p.StartDate
	p.InitialCapital = -1
	p.Stocks = nil

	require.ErrorIs(t, ValidateParams(p), ErrInvalidDateRange)
}

func TestSimulatorRun_Deterministic(t *testing.T) {
	p := validParams()

	first, err := NewSimulator(rand.New(rand.NewSource(42))).Run(p)
	require.NoError(t, err)
	second, err := NewSimulator(rand.New(rand.NewSource(42))).Run(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulatorRun_SeriesShape(t *testing.T) {
	p := validParams()
	res, err := NewSimulator(rand.New(rand.NewSource(1))).Run(p)
	require.NoError(t, err)

	series := res.PerformanceSeries
	require.NotEmpty(t, series)

	// First point holds the initial capital exactly, dated at the start.
	assert.Equal(t, p.InitialCapital, series[0].PortfolioValue)
	assert.Equal(t, p.InitialCapital, series[0].BenchmarkValue)
	assert.True(t, series[0].Date.Equal(p.StartDate))

	// Weekly spacing throughout.
	for i := 1; i < len(series); i++ {
		assert.Equal(t, 7*24*time.Hour, series[i].Date.Sub(series[i-1].Date))
	}

	// No sample lands past the end date.
	last := series[len(series)-1]
	assert.False(t, last.Date.After(p.EndDate))
}

func TestSimulatorRun_StepBounds(t *testing.T) {
	p := validParams()
	res, err := NewSimulator(rand.New(rand.NewSource(7))).Run(p)
	require.NoError(t, err)

	series := res.PerformanceSeries
	for i := 1; i < len(series); i++ {
		r := series[i].PortfolioValue/series[i-1].PortfolioValue - 1
		assert.GreaterOrEqual(t, r, -weeklyStepMaxReturn-tolerance)
		assert.LessOrEqual(t, r, weeklyStepMaxReturn+tolerance)
	}
}

// The benchmark compounds deterministically at 8% a year: it rises strictly
// and is identical across runs with different random sources.
func TestSimulatorRun_BenchmarkIndependentOfRand(t *testing.T) {
	p := validParams()

	a, err := NewSimulator(rand.New(rand.NewSource(1))).Run(p)
	require.NoError(t, err)
	b, err := NewSimulator(rand.New(rand.NewSource(2))).Run(p)
	require.NoError(t, err)

	require.Equal(t, len(a.PerformanceSeries), len(b.PerformanceSeries))
	for i := range a.PerformanceSeries {
		assert.Equal(t, a.PerformanceSeries[i].BenchmarkValue, b.PerformanceSeries[i].BenchmarkValue)
		if i > 0 {
			assert.Greater(t, a.PerformanceSeries[i].BenchmarkValue, a.PerformanceSeries[i-1].BenchmarkValue)
		}
	}
}

func TestSimulatorRun_MetricsFromSeries(t *testing.T) {
	p := validParams()
	res, err := NewSimulator(rand.New(rand.NewSource(99))).Run(p)
	require.NoError(t, err)

	series := res.PerformanceSeries
	final := series[len(series)-1].PortfolioValue
	m := res.Metrics

	assert.InDelta(t, final, m.FinalValue, tolerance)
	assert.InDelta(t, (final-p.InitialCapital)/p.InitialCapital*100, m.TotalReturnPct, tolerance)
	assert.Equal(t, len(series)-1, m.TradeCount)

	values := make([]float64, len(series))
	for i, pt := range series {
		values[i] = pt.PortfolioValue
	}
	returns := PeriodicReturns(values)
	assert.InDelta(t, SharpeRatio(returns, weeksPerYear), m.SharpeRatio, tolerance)
	assert.InDelta(t, MaxDrawdown(values), m.MaxDrawdownPct, tolerance)
	assert.InDelta(t, WinRate(returns), m.WinRatePct, tolerance)
}

func TestSimulatorRun_RejectsInvalidParams(t *testing.T) {
	p := validParams()
	p.InitialCapital = 0

	_, err := NewSimulator(nil).Run(p)
	require.ErrorIs(t, err, ErrInvalidCapital)
}

func TestSimulatorRun_SubDayRange(t *testing.T) {
	p := validParams()
	p.EndDate = p.StartDate.Add(12 * time.Hour)

	_, err := NewSimulator(nil).Run(p)
	require.ErrorIs(t, err, ErrInvalidDateRange)
}
