package market

import "github.com/accraquant/sika/internal/models"

// Composite score weights. The three components sum to 100.
const (
	valuationWeight = 40.0
	yieldWeight     = 30.0
	momentumWeight  = 30.0
)

// ComputeScore derives the 0-100 composite quality score from a stock's
// fundamentals and day momentum. Deterministic: equal inputs always produce
// equal scores, so tier transitions only happen when the data moves.
//
//	valuation (40): low P/E scores high, linear from P/E 5 down to P/E 25.
//	                Unknown or negative earnings take the midpoint.
//	yield     (30): trailing dividend yield, saturating at 10%.
//	momentum  (30): day change mapped from -5%..+5%; flat is the midpoint.
func ComputeScore(stock *models.Stock) float64 {
	score := valuationScore(stock.PERatio) + yieldScore(stock.DividendYield) + momentumScore(stock.ChangePercent())
	return clamp(score, 0, 100)
}

func valuationScore(pe float64) float64 {
	if pe <= 0 {
		return valuationWeight / 2
	}
	if pe <= 5 {
		return valuationWeight
	}
	if pe >= 25 {
		return 0
	}
	return valuationWeight * (25 - pe) / 20
}

func yieldScore(dy float64) float64 {
	if dy <= 0 {
		return 0
	}
	if dy >= 10 {
		return yieldWeight
	}
	return yieldWeight * dy / 10
}

func momentumScore(changePct float64) float64 {
	if changePct <= -5 {
		return 0
	}
	if changePct >= 5 {
		return momentumWeight
	}
	return momentumWeight * (changePct + 5) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
