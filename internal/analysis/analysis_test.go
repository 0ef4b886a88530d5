package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) []time.Time {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestPctChangeKnownPrices(t *testing.T) {
	prices := []float64{100, 110, 99, 121}

	r := Returns(Series{Symbol: "X", Dates: days(4), Values: prices}, true)
	require.Len(t, r.Values, 3)
	assert.InDelta(t, 10.0, r.Values[0], 1e-9)
	assert.InDelta(t, -10.0, r.Values[1], 1e-9)
	assert.InDelta(t, 22.2222222, r.Values[2], 1e-6)
	assert.Equal(t, days(4)[1:], r.Dates)

	index := CumulativeIndex(r.Values)
	require.Len(t, index, 4)
	for i, want := range []float64{1, 1.1, 0.99, 1.21} {
		assert.InDelta(t, want, index[i], 1e-12, "index[%d]", i)
	}

	assert.InDelta(t, -10.0, MaxDrawdown(prices), 1e-9)
	assert.InDelta(t, -10.0, MaxDrawdown(index), 1e-9)
}

func TestPctChangeShortInput(t *testing.T) {
	assert.Nil(t, PctChange(nil))
	assert.Nil(t, PctChange([]float64{1}))
	r := PctChange([]float64{0, 1})
	assert.True(t, math.IsNaN(r[0]))
}

func TestMaxDrawdownProperties(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{1, 2, 3, 4}, 0},
		{"flat", []float64{5, 5, 5}, 0},
		{"v shape", []float64{10, 5, 10, 20}, -50},
		{"new peak then deeper fall", []float64{10, 9, 20, 12, 25}, -40},
		{"nan skipped", []float64{10, math.NaN(), 8}, -20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.prices)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestDrawdownZeroAtRunningPeak(t *testing.T) {
	prices := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	dd := DrawdownSeries(prices)
	peak := math.Inf(-1)
	for i, p := range prices {
		if p >= peak {
			peak = p
			assert.Equal(t, 0.0, dd[i], "point %d is a running peak", i)
		}
		assert.LessOrEqual(t, dd[i], 0.0)
	}
}

func TestMarketCapWeights(t *testing.T) {
	caps := map[string]decimal.Decimal{
		"NVDA": decimal.NewFromInt(3_000_000_000_000),
		"AMD":  decimal.NewFromInt(250_000_000_000),
		"INTC": decimal.NewFromInt(100_000_000_000),
		"VRT":  decimal.Zero,
	}
	w, err := MarketCapWeights([]string{"NVDA", "AMD", "INTC", "VRT", "DELL"}, caps)
	require.NoError(t, err)

	assert.Equal(t, []string{"NVDA", "AMD", "INTC"}, w.Symbols)
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
	nvda, ok := w.Of("NVDA")
	require.True(t, ok)
	assert.InDelta(t, 3000.0/3350.0, nvda, 1e-12)
	_, ok = w.Of("DELL")
	assert.False(t, ok)
	for _, v := range w.Values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestMarketCapWeightsNoCaps(t *testing.T) {
	_, err := MarketCapWeights([]string{"A"}, map[string]decimal.Decimal{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestWeightedReturnsIgnoresUnweighted(t *testing.T) {
	d := days(3)
	a := Series{Symbol: "A", Dates: d, Values: []float64{1, 2, 3}}
	b := Series{Symbol: "B", Dates: d, Values: []float64{3, 2, math.NaN()}}
	c := Series{Symbol: "C", Dates: d, Values: []float64{100, 100, 100}}
	w := Weights{Symbols: []string{"A", "B"}, Values: []float64{0.25, 0.75}}

	got, err := WeightedReturns([]Series{a, b, c}, w)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.5, 2, 0.75}, got.Values, 1e-12)
	assert.Equal(t, "Portfolio", got.Symbol)

	_, err = WeightedReturns([]Series{c}, w)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBetaAgainstItselfIsOne(t *testing.T) {
	s := Series{Symbol: "SPY", Dates: days(6), Values: []float64{0.5, -1.2, 2.0, 0.1, -0.4, 1.1}}
	b, err := Beta(s, s)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b, 1e-12)
}

func TestBetaJoinsOnDatesAndDropsMissing(t *testing.T) {
	d := days(6)
	bench := Series{Symbol: "SPY", Dates: d, Values: []float64{1, 2, math.NaN(), 4, 5, 6}}
	// asset = 2 * bench on the usable rows, garbage on the NaN row and an extra date.
	asset := Series{
		Symbol: "X",
		Dates:  append(append([]time.Time{}, d[1:]...), d[5].AddDate(0, 0, 7)),
		Values: []float64{4, 99, 8, 10, 12, 1000},
	}
	b, err := Beta(asset, bench)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, b, 1e-12)
}

func TestBetaErrors(t *testing.T) {
	d := days(3)
	_, err := Beta(Series{Dates: d[:1], Values: []float64{1}}, Series{Dates: d[:1], Values: []float64{1}})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Beta(Series{Dates: d, Values: []float64{1, 2, 3}}, Series{Dates: d, Values: []float64{1, 1, 1}})
	assert.Error(t, err)
}

func TestAnnualize(t *testing.T) {
	daily := []float64{0.01, -0.02, 0.03, 0.0}
	rr, err := Annualize(daily)
	require.NoError(t, err)

	mean := 0.005
	variance := (0.005*0.005 + 0.025*0.025 + 0.025*0.025 + 0.005*0.005) / 3
	assert.InDelta(t, mean*252, rr.Return, 1e-12)
	assert.InDelta(t, math.Sqrt(variance)*math.Sqrt(252), rr.Volatility, 1e-12)
	assert.InDelta(t, rr.Volatility/rr.Return, rr.Ratio, 1e-12)
}

func TestAnnualizeZeroMeanIsInfinite(t *testing.T) {
	rr, err := Annualize([]float64{0.01, -0.01, 0.02, -0.02})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rr.Return)
	assert.True(t, math.IsInf(rr.Ratio, 1))
}

func TestAnnualizeTooShort(t *testing.T) {
	_, err := Annualize([]float64{0.01, math.NaN()})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAlignFromCommonStart(t *testing.T) {
	d := days(5)
	old := Series{Symbol: "OLD", Dates: d, Values: []float64{1, 2, 3, 4, 5}}
	// NEW lists later and misses d[3].
	fresh := Series{Symbol: "NEW", Dates: []time.Time{d[2], d[4]}, Values: []float64{30, 50}}

	f, err := AlignFromCommonStart([]Series{old, fresh})
	require.NoError(t, err)
	assert.Equal(t, d[2:], f.Dates)
	assert.Equal(t, []float64{3, 4, 5}, f.Columns[0])
	assert.Equal(t, []float64{30, 30, 50}, f.Columns[1])

	col, ok := f.Column("NEW")
	require.True(t, ok)
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, 50.0, col.Last())
}

func TestAlignFromCommonStartDisjoint(t *testing.T) {
	d := days(4)
	_, err := AlignFromCommonStart([]Series{
		{Symbol: "A", Dates: d[:2], Values: []float64{1, 2}},
		{Symbol: "B", Dates: d[2:], Values: []float64{1, 2}},
	})
	assert.ErrorIs(t, err, ErrNoCommonDate)
}

func TestUnionDates(t *testing.T) {
	d := days(6)
	dates, values := UnionDates([]Series{
		{Symbol: "A", Dates: []time.Time{d[0], d[2]}, Values: []float64{1, 3}},
		{Symbol: "B", Dates: []time.Time{d[1], d[4], d[5]}, Values: []float64{10, 40, 50}},
	})
	assert.Equal(t, []time.Time{d[0], d[1], d[2], d[4], d[5]}, dates)

	a, b := values[0], values[1]
	assert.Equal(t, []float64{1, 1, 3}, a[:3])
	assert.True(t, math.IsNaN(a[3]) && math.IsNaN(a[4]), "A ends at its last close")
	assert.True(t, math.IsNaN(b[0]), "B starts at its first close")
	assert.Equal(t, []float64{10, 10, 40, 50}, b[1:])
}

func TestUnionDatesDisjoint(t *testing.T) {
	d := days(4)
	dates, values := UnionDates([]Series{
		{Symbol: "OLD", Dates: d[:2], Values: []float64{1, 2}},
		{Symbol: "NEW", Dates: d[2:], Values: []float64{3, 4}},
	})
	assert.Len(t, dates, 4)
	assert.Equal(t, []float64{1, 2}, values[0][:2])
	assert.Equal(t, []float64{3, 4}, values[1][2:])
}

func TestIndexSeries(t *testing.T) {
	d := days(3)
	s := IndexSeries(Series{Symbol: "Portfolio", Dates: d[1:], Values: []float64{10, -10}}, d[0])
	assert.Equal(t, d, s.Dates)
	assert.InDeltaSlice(t, []float64{1, 1.1, 0.99}, s.Values, 1e-12)
}

func TestTrendVsSMA(t *testing.T) {
	trend, _ := TrendVsSMA([]float64{1, 2}, 5)
	assert.Equal(t, TrendUnknown, trend)

	trend, avg := TrendVsSMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, TrendAbove, trend)
	assert.InDelta(t, 4.0, avg, 1e-12)

	trend, _ = TrendVsSMA([]float64{5, 4, 3, 2, 1}, 3)
	assert.Equal(t, TrendBelow, trend)
}
