package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/analysis"
	"portfolioRisk/internal/finance"
)

const DefaultSMAPeriod = 200

type ScreenConfig struct {
	// Start bounds the history; zero means the full history.
	Start     time.Time
	SMAPeriod int
}

// ScreenRow is the annualized profile of one screened ticker.
type ScreenRow struct {
	Symbol string
	Closes analysis.Series
	Stats  analysis.RiskReward
	Trend  analysis.Trend
	SMA    float64
}

// Failure records a ticker the screen had to skip.
type Failure struct {
	Symbol string
	Err    error
}

func (f Failure) String() string { return fmt.Sprintf("Failed to process %s: %v", f.Symbol, f.Err) }

type ScreenResult struct {
	Rows     []ScreenRow
	Failures []Failure
}

// Symbols returns the screened tickers that produced statistics, in input order.
func (r *ScreenResult) Symbols() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Symbol
	}
	return out
}

type Screen struct {
	prices finance.PriceSource
	cfg    ScreenConfig
	log    *logrus.Logger
}

func NewScreen(prices finance.PriceSource, cfg ScreenConfig, log *logrus.Logger) *Screen {
	if cfg.SMAPeriod <= 0 {
		cfg.SMAPeriod = DefaultSMAPeriod
	}
	return &Screen{prices: prices, cfg: cfg, log: log}
}

// Run screens every symbol independently. Tickers that are malformed, fail to download
// or have too little history are reported in Failures and skipped; only a cancelled context stops
// the run early.
func (s *Screen) Run(ctx context.Context, symbols []string) (*ScreenResult, error) {
	entry := s.log.WithField("pipeline", "screen")
	res := &ScreenResult{}
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, err := s.screenOne(ctx, sym)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			f := Failure{Symbol: sym, Err: err}
			entry.WithField("symbol", sym).Warn(f.String())
			res.Failures = append(res.Failures, f)
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func (s *Screen) screenOne(ctx context.Context, sym string) (ScreenRow, error) {
	sym, err := finance.ValidateSymbol(sym)
	if err != nil {
		return ScreenRow{}, err
	}
	closes, err := s.prices.DailyCloses(ctx, sym, s.cfg.Start)
	if err != nil {
		return ScreenRow{}, err
	}
	closes.Symbol = sym
	stats, err := analysis.Annualize(analysis.PctChange(closes.Values))
	if err != nil {
		return ScreenRow{}, err
	}
	trend, sma := analysis.TrendVsSMA(closes.Values, s.cfg.SMAPeriod)
	return ScreenRow{Symbol: sym, Closes: closes, Stats: stats, Trend: trend, SMA: sma}, nil
}
