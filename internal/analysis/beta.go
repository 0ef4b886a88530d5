package analysis

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Beta regresses asset returns on benchmark returns and returns the slope. Both series
// are joined on their common dates and rows with a missing value in either are dropped.
func Beta(asset, bench Series) (float64, error) {
	benchByDay := make(map[time.Time]float64, len(bench.Dates))
	for i, d := range bench.Dates {
		if i < len(bench.Values) {
			benchByDay[Day(d)] = bench.Values[i]
		}
	}

	x := make([]float64, 0, len(asset.Values))
	y := make([]float64, 0, len(asset.Values))
	for i, d := range asset.Dates {
		if i >= len(asset.Values) {
			break
		}
		b, ok := benchByDay[Day(d)]
		a := asset.Values[i]
		if !ok || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			continue
		}
		x = append(x, b)
		y = append(y, a)
	}
	if len(x) < 2 {
		return math.NaN(), fmt.Errorf("beta %s vs %s: %w: %d overlapping returns", asset.Symbol, bench.Symbol, ErrInsufficientData, len(x))
	}
	if stat.Variance(x, nil) == 0 {
		return math.NaN(), fmt.Errorf("beta %s vs %s: benchmark returns have no variance", asset.Symbol, bench.Symbol)
	}

	_, slope := stat.LinearRegression(x, y, nil, false)
	return slope, nil
}
