package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Weights maps tickers to non-negative fractions summing to 1, in a stable order.
type Weights struct {
	Symbols []string
	Values  []float64
}

// Of returns the weight of symbol, ok=false when it is not part of the portfolio.
func (w Weights) Of(symbol string) (float64, bool) {
	for i, s := range w.Symbols {
		if s == symbol {
			return w.Values[i], true
		}
	}
	return 0, false
}

// Sum returns the total weight; 1 for any weights built by MarketCapWeights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w.Values {
		total += v
	}
	return total
}

// MarketCapWeights weights each ticker of order by its market cap divided by the total.
// Tickers whose cap is missing or not positive are left out, which also removes them
// from the normalization.
func MarketCapWeights(order []string, caps map[string]decimal.Decimal) (Weights, error) {
	var w Weights
	total := decimal.Zero
	valid := make([]decimal.Decimal, 0, len(order))
	for _, symbol := range order {
		c, ok := caps[symbol]
		if !ok || !c.IsPositive() {
			continue
		}
		w.Symbols = append(w.Symbols, symbol)
		valid = append(valid, c)
		total = total.Add(c)
	}
	if len(w.Symbols) == 0 {
		return Weights{}, fmt.Errorf("market cap weights: %w: no ticker has a market cap", ErrInsufficientData)
	}

	w.Values = make([]float64, len(valid))
	allocated := decimal.Zero
	for i, c := range valid {
		if i == len(valid)-1 {
			// The last weight takes the remainder so that the decimal weights sum to exactly 1.
			w.Values[i] = decimal.NewFromInt(1).Sub(allocated).InexactFloat64()
			break
		}
		share := c.DivRound(total, 16)
		allocated = allocated.Add(share)
		w.Values[i] = share.InexactFloat64()
	}
	return w, nil
}
