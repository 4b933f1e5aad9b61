package models

// LiveQuote is one entry from the exchange live feed.
type LiveQuote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"` // absolute change on the day
	Volume int64   `json:"volume"`
}

// EquityDetail is the full listing record for one equity, combining the
// company profile with current financials.
type EquityDetail struct {
	Ticker            string  `json:"ticker"`
	Name              string  `json:"name"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding int64   `json:"shares_outstanding"`
	EPS               float64 `json:"eps"` // earnings per share, trailing
	DPS               float64 `json:"dps"` // dividend per share, trailing
}

// PERatio derives the price/earnings ratio, or 0 when earnings are
// non-positive.
func (e *EquityDetail) PERatio() float64 {
	if e.EPS <= 0 {
		return 0
	}
	return e.Price / e.EPS
}

// DividendYield derives the trailing dividend yield as a percentage,
// or 0 when the price is unknown.
func (e *EquityDetail) DividendYield() float64 {
	if e.Price <= 0 {
		return 0
	}
	return e.DPS / e.Price * 100
}
