package market

import (
	"testing"

	"github.com/accraquant/sika/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name     string
		stock    models.Stock
		expected float64
	}{
		{
			name: "deep value high yield flat day",
			// valuation 40 (P/E <= 5) + yield 30 (>= 10%) + momentum 15 (flat)
			stock: models.Stock{
				PERatio:       4.0,
				DividendYield: 12.0,
				CurrentPrice:  5.00,
				PreviousClose: 5.00,
			},
			expected: 85.0,
		},
		{
			name: "unknown earnings take valuation midpoint",
			// valuation 20 + yield 0 + momentum 15
			stock: models.Stock{
				PERatio:       0,
				CurrentPrice:  2.00,
				PreviousClose: 2.00,
			},
			expected: 35.0,
		},
		{
			name: "expensive no yield big down day",
			// valuation 0 (P/E >= 25) + yield 0 + momentum 0 (-5% or worse)
			stock: models.Stock{
				PERatio:       40.0,
				CurrentPrice:  9.00,
				PreviousClose: 10.00,
			},
			expected: 0.0,
		},
		{
			name: "midrange P/E scales linearly",
			// P/E 15 -> 40*(25-15)/20 = 20; yield 5% -> 15; flat -> 15
			stock: models.Stock{
				PERatio:       15.0,
				DividendYield: 5.0,
				CurrentPrice:  3.00,
				PreviousClose: 3.00,
			},
			expected: 50.0,
		},
		{
			name: "strong up day maxes momentum",
			// P/E 15 -> 20; yield 0; +5% -> 30
			stock: models.Stock{
				PERatio:       15.0,
				CurrentPrice:  1.05,
				PreviousClose: 1.00,
			},
			expected: 50.0,
		},
		{
			name: "no previous close counts as flat",
			stock: models.Stock{
				PERatio:      15.0,
				CurrentPrice: 1.00,
			},
			expected: 35.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(&tt.stock)
			if !approxEqual(got, tt.expected, 1e-6) {
				t.Errorf("expected score %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestComputeScore_Bounds(t *testing.T) {
	// Best and worst plausible inputs stay inside 0-100
	best := &models.Stock{PERatio: 1, DividendYield: 50, CurrentPrice: 2.00, PreviousClose: 1.00}
	if got := ComputeScore(best); got > 100 {
		t.Errorf("score exceeds 100: %.2f", got)
	}
	worst := &models.Stock{PERatio: 100, CurrentPrice: 0.50, PreviousClose: 1.00}
	if got := ComputeScore(worst); got < 0 {
		t.Errorf("score below 0: %.2f", got)
	}
}

func TestComputeScore_Deterministic(t *testing.T) {
	stock := &models.Stock{PERatio: 8.5, DividendYield: 3.2, CurrentPrice: 4.10, PreviousClose: 4.02}
	first := ComputeScore(stock)
	for i := 0; i < 10; i++ {
		if got := ComputeScore(stock); got != first {
			t.Fatalf("score changed between runs: %.6f vs %.6f", first, got)
		}
	}
}

func TestTierAssignment(t *testing.T) {
	tests := []struct {
		score    float64
		expected models.Tier
	}{
		{85, models.TierA},
		{70, models.TierA},
		{69.99, models.TierB},
		{40, models.TierB},
		{39.99, models.TierC},
		{0, models.TierC},
	}
	for _, tt := range tests {
		if got := models.TierForScore(tt.score); got != tt.expected {
			t.Errorf("score %.2f: expected tier %s, got %s", tt.score, tt.expected, got)
		}
	}
}
