package analysis

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily returns.
const TradingDaysPerYear = 252

// RiskReward holds annualized statistics of a daily return series.
type RiskReward struct {
	Return     float64 // mean daily return * 252
	Volatility float64 // sample std of daily returns * sqrt(252)
	Ratio      float64 // Volatility / Return, +Inf when Return is exactly 0
}

// Annualize computes the annualized return, volatility and risk/reward ratio of daily
// fractional returns. NaN returns are skipped.
func Annualize(daily []float64) (RiskReward, error) {
	clean := dropNaN(daily)
	if len(clean) < 2 {
		return RiskReward{}, fmt.Errorf("annualize: %w: %d returns", ErrInsufficientData, len(clean))
	}
	mean, std := stat.MeanStdDev(clean, nil)
	rr := RiskReward{
		Return:     mean * TradingDaysPerYear,
		Volatility: std * math.Sqrt(TradingDaysPerYear),
	}
	if rr.Return == 0 {
		rr.Ratio = math.Inf(1)
	} else {
		rr.Ratio = rr.Volatility / rr.Return
	}
	return rr, nil
}

// MeanStd returns the mean and sample standard deviation of values, skipping NaNs.
func MeanStd(values []float64) (mean, std float64) {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(clean) == 1 {
		return clean[0], math.NaN()
	}
	return stat.MeanStdDev(clean, nil)
}

// Trend tells where the last close sits relative to its moving average.
type Trend string

const (
	TrendAbove   Trend = "above"
	TrendBelow   Trend = "below"
	TrendUnknown Trend = "n/a"
)

// TrendVsSMA compares the last close to the simple moving average over period closes.
func TrendVsSMA(closes []float64, period int) (Trend, float64) {
	clean := dropNaN(closes)
	if period <= 0 || len(clean) < period {
		return TrendUnknown, math.NaN()
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	averages := helper.ChanToSlice(sma.Compute(helper.SliceToChan(clean)))
	if len(averages) == 0 {
		return TrendUnknown, math.NaN()
	}
	avg := averages[len(averages)-1]
	if clean[len(clean)-1] >= avg {
		return TrendAbove, avg
	}
	return TrendBelow, avg
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
