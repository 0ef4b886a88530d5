package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/analysis"
	"portfolioRisk/internal/finance"
)

// DefaultTickers is the market-cap weighted hardware and industrials basket.
var DefaultTickers = []string{"NVDA", "AMD", "INTC", "CSCO", "AVGO", "GLW", "DELL", "STX", "WDC", "VRT", "CAT", "ETN"}

const DefaultBenchmark = "SPY"

type PortfolioConfig struct {
	Tickers   []string
	Benchmark string
	Start     time.Time
}

// Holding carries the per-ticker statistics of a weighted constituent.
type Holding struct {
	Symbol      string
	MarketCap   decimal.Decimal
	Weight      float64
	MeanReturn  float64 // daily, percent
	StdReturn   float64 // daily, percent
	MaxDrawdown float64 // percent, <= 0
	Beta        float64 // NaN when it could not be estimated
}

type PortfolioResult struct {
	Benchmark string
	Start     time.Time
	End       time.Time

	// Prices holds the closes of weighted tickers from the first common date.
	Prices   *analysis.Frame
	Holdings []Holding
	Weights  analysis.Weights
	// Excluded lists tickers dropped because no market cap was available.
	Excluded []string

	Returns     analysis.Series // weighted daily percent returns
	Index       analysis.Series // cumulative "price" starting at 1
	MeanReturn  float64
	StdReturn   float64
	MaxDrawdown float64
	Beta        float64
}

// CumulativeReturnPct returns the index as a cumulative percent return series.
func (r *PortfolioResult) CumulativeReturnPct() []float64 {
	out := make([]float64, r.Index.Len())
	for i, v := range r.Index.Values {
		out[i] = (v - 1) * 100
	}
	return out
}

type Portfolio struct {
	prices finance.PriceSource
	caps   finance.CapSource
	cfg    PortfolioConfig
	log    *logrus.Logger
}

func NewPortfolio(prices finance.PriceSource, caps finance.CapSource, cfg PortfolioConfig, log *logrus.Logger) *Portfolio {
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = DefaultTickers
	}
	if cfg.Benchmark == "" {
		cfg.Benchmark = DefaultBenchmark
	}
	return &Portfolio{prices: prices, caps: caps, cfg: cfg, log: log}
}

// Run downloads prices and caps, weights the basket by market cap and measures it
// against the benchmark. A failed price download aborts the run; a missing market
// cap only drops the ticker.
func (p *Portfolio) Run(ctx context.Context) (*PortfolioResult, error) {
	entry := p.log.WithField("pipeline", "portfolio")

	series := make([]analysis.Series, 0, len(p.cfg.Tickers))
	for _, t := range p.cfg.Tickers {
		s, err := p.prices.DailyCloses(ctx, t, p.cfg.Start)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", t, err)
		}
		s.Symbol = t
		entry.WithField("symbol", t).Debugf("downloaded %d closes", s.Len())
		series = append(series, s)
	}

	frame, err := analysis.AlignFromCommonStart(series)
	if err != nil {
		return nil, err
	}
	entry.Infof("common history starts %s (%d rows)", frame.Dates[0].Format("2006-01-02"), len(frame.Dates))

	caps := make(map[string]decimal.Decimal, len(p.cfg.Tickers))
	var excluded []string
	for _, t := range p.cfg.Tickers {
		c, err := p.caps.MarketCap(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			entry.WithField("symbol", t).Warnf("excluded from portfolio: %v", err)
			excluded = append(excluded, t)
			continue
		}
		caps[t] = c
	}
	weights, err := analysis.MarketCapWeights(p.cfg.Tickers, caps)
	if err != nil {
		return nil, err
	}
	// tickers with a zero cap are dropped by the weighting too
	for _, t := range p.cfg.Tickers {
		if _, ok := weights.Of(t); !ok && !contains(excluded, t) {
			excluded = append(excluded, t)
		}
	}

	prices := subFrame(frame, weights.Symbols)
	returns := make([]analysis.Series, 0, len(prices.Symbols))
	for _, s := range prices.Series() {
		returns = append(returns, analysis.Returns(s, true))
	}
	portRet, err := analysis.WeightedReturns(returns, weights)
	if err != nil {
		return nil, err
	}
	index := analysis.IndexSeries(portRet, prices.Dates[0])

	bench, err := p.prices.DailyCloses(ctx, p.cfg.Benchmark, prices.Dates[0])
	if err != nil {
		return nil, fmt.Errorf("download benchmark %s: %w", p.cfg.Benchmark, err)
	}
	benchRet := analysis.Returns(bench, true)

	res := &PortfolioResult{
		Benchmark:   p.cfg.Benchmark,
		Start:       prices.Dates[0],
		End:         prices.Dates[len(prices.Dates)-1],
		Prices:      prices,
		Weights:     weights,
		Excluded:    excluded,
		Returns:     portRet,
		Index:       index,
		MaxDrawdown: analysis.MaxDrawdown(index.Values),
		Beta:        p.beta(entry, portRet, benchRet),
	}
	res.MeanReturn, res.StdReturn = analysis.MeanStd(portRet.Values)

	for i, s := range prices.Series() {
		w, _ := weights.Of(s.Symbol)
		h := Holding{
			Symbol:      s.Symbol,
			MarketCap:   caps[s.Symbol],
			Weight:      w,
			MaxDrawdown: analysis.MaxDrawdown(s.Values),
			Beta:        p.beta(entry, returns[i], benchRet),
		}
		h.MeanReturn, h.StdReturn = analysis.MeanStd(returns[i].Values)
		res.Holdings = append(res.Holdings, h)
	}
	return res, nil
}

func (p *Portfolio) beta(entry *logrus.Entry, asset, bench analysis.Series) float64 {
	b, err := analysis.Beta(asset, bench)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			entry.WithField("symbol", asset.Symbol).Warn("beta: not enough overlapping returns")
		} else {
			entry.WithField("symbol", asset.Symbol).Warnf("beta: %v", err)
		}
		return math.NaN()
	}
	return b
}

// subFrame keeps the columns of symbols in the given order.
func subFrame(f *analysis.Frame, symbols []string) *analysis.Frame {
	out := &analysis.Frame{Dates: f.Dates}
	for _, sym := range symbols {
		if s, ok := f.Column(sym); ok {
			out.Symbols = append(out.Symbols, sym)
			out.Columns = append(out.Columns, s.Values)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
