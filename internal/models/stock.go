// Package models defines data structures for Sika
package models

import (
	"strings"
	"time"
)

// Tier is the coarse A/B/C quality classification assigned from the
// composite score during market sync.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Score thresholds for tier assignment.
const (
	TierAThreshold = 70.0
	TierBThreshold = 40.0
)

// TierForScore maps a 0–100 composite score to a tier.
func TierForScore(score float64) Tier {
	switch {
	case score >= TierAThreshold:
		return TierA
	case score >= TierBThreshold:
		return TierB
	default:
		return TierC
	}
}

// NormalizeTicker upper-cases and trims a GSE ticker code.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Stock represents a GSE-listed equity. Read-mostly from the client's
// perspective — mutated only by the market sync pipeline.
type Stock struct {
	Ticker        string    `json:"ticker"` // GSE code, e.g. "MTNGH"
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	CurrentPrice  float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	MarketCap     float64   `json:"market_cap"`
	PERatio       float64   `json:"pe_ratio"`
	DividendYield float64   `json:"dividend_yield"`
	Score         float64   `json:"score"` // composite 0–100
	Tier          Tier      `json:"tier"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChangePercent returns the day change relative to the previous close,
// or 0 when no previous close is known.
func (s *Stock) ChangePercent() float64 {
	if s.PreviousClose <= 0 {
		return 0
	}
	return (s.CurrentPrice - s.PreviousClose) / s.PreviousClose * 100
}

// PricePoint is one entry in a stock's daily close history.
type PricePoint struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StockFilter narrows stock listings. Zero values mean "no filter".
type StockFilter struct {
	ActiveOnly bool   `json:"active_only"`
	Sector     string `json:"sector"`
	Tier       Tier   `json:"tier"`
	Limit      int    `json:"limit"`
}
