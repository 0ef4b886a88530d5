package analysis

import "math"

// DrawdownSeries returns (price - running peak) / running peak for every point, as a
// percentage. NaN prices carry the previous drawdown.
func DrawdownSeries(prices []float64) []float64 {
	out := make([]float64, len(prices))
	peak := math.NaN()
	prev := 0.0
	for i, p := range prices {
		if math.IsNaN(p) {
			out[i] = prev
			continue
		}
		if math.IsNaN(peak) || p > peak {
			peak = p
		}
		dd := 0.0
		if peak > 0 {
			dd = (p - peak) / peak * 100
		}
		out[i] = dd
		prev = dd
	}
	return out
}

// MaxDrawdown returns the largest peak-to-trough decline of prices as a percentage.
// The result is never positive; a series that only rises has a drawdown of 0.
func MaxDrawdown(prices []float64) float64 {
	worst := 0.0
	for _, dd := range DrawdownSeries(prices) {
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
