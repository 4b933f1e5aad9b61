package valuation

// TradeInput is the subset of a trade that affects a position.
type TradeInput struct {
	IsBuy  bool
	Shares float64
	Price  float64
	Fees   float64
}

// sellEpsilon absorbs float accumulation when selling an entire position.
const sellEpsilon = 1e-9

// ApplyTrade folds a trade into a position held at (shares, avgCost) and
// returns the new share count and average cost.
//
// Buys blend fees into the weighted average:
//
//	newAvg = (shares×avgCost + q×price + fees) / (shares + q)
//
// Sells reduce the share count and leave the average cost untouched; selling
// more shares than held fails with ErrInsufficientShares. A sale that empties
// the position returns shares == 0, which callers treat as position deletion.
func ApplyTrade(shares, avgCost float64, t TradeInput) (newShares, newAvgCost float64, err error) {
	if t.Shares <= 0 {
		return 0, 0, ErrInsufficientShares
	}

	if t.IsBuy {
		if t.Price <= 0 {
			return 0, 0, ErrInvalidQuote
		}
		newShares = shares + t.Shares
		newAvgCost = (shares*avgCost + t.Shares*t.Price + t.Fees) / newShares
		return newShares, newAvgCost, nil
	}

	if t.Shares > shares+sellEpsilon {
		return 0, 0, ErrInsufficientShares
	}
	newShares = shares - t.Shares
	if newShares < sellEpsilon {
		newShares = 0
	}
	return newShares, avgCost, nil
}
