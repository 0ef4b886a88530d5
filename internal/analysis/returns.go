package analysis

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// PctChange returns the fractional change between consecutive values.
// The result is one element shorter than the input.
func PctChange(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(values[i]) {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = values[i]/prev - 1
	}
	return out
}

// Returns converts a price series into its return series, in percent when pct is set
// and as plain fractions otherwise. The first date is dropped.
func Returns(s Series, pct bool) Series {
	r := PctChange(s.Values)
	if pct {
		floats.Scale(100, r)
	}
	dates := s.Dates
	if len(dates) > 0 {
		dates = dates[1:]
	}
	return Series{Symbol: s.Symbol, Dates: dates, Values: r}
}

// WeightedReturns sums each row of returns weighted by w. Series whose symbol has no
// weight are ignored, so tickers without a market cap never reach the portfolio.
// All weighted series must share the same dates.
func WeightedReturns(returns []Series, w Weights) (Series, error) {
	var out Series
	out.Symbol = "Portfolio"
	used := 0
	for _, r := range returns {
		weight, ok := w.Of(r.Symbol)
		if !ok {
			continue
		}
		if out.Values == nil {
			out.Dates = r.Dates
			out.Values = make([]float64, len(r.Values))
		}
		if len(r.Values) != len(out.Values) {
			return Series{}, fmt.Errorf("weighted returns: %s has %d rows, expected %d", r.Symbol, len(r.Values), len(out.Values))
		}
		for i, v := range r.Values {
			// NaN rows count as zero like a pandas row sum.
			if math.IsNaN(v) {
				continue
			}
			out.Values[i] += weight * v
		}
		used++
	}
	if used == 0 {
		return Series{}, fmt.Errorf("weighted returns: %w: no weighted ticker in returns", ErrInsufficientData)
	}
	return out, nil
}

// CumulativeIndex compounds percentage returns into a price index starting at 1.
// The index has one more element than the returns.
func CumulativeIndex(returnsPct []float64) []float64 {
	growth := make([]float64, len(returnsPct)+1)
	growth[0] = 1
	for i, r := range returnsPct {
		if math.IsNaN(r) {
			r = 0
		}
		growth[i+1] = 1 + r/100
	}
	return floats.CumProd(make([]float64, len(growth)), growth)
}

// IndexSeries builds the portfolio "price" series from its percentage returns. origin
// is the price date preceding the first return, where the index equals 1.
func IndexSeries(returnsPct Series, origin time.Time) Series {
	dates := make([]time.Time, 0, len(returnsPct.Dates)+1)
	dates = append(dates, origin)
	dates = append(dates, returnsPct.Dates...)
	return Series{Symbol: returnsPct.Symbol, Dates: dates, Values: CumulativeIndex(returnsPct.Values)}
}
