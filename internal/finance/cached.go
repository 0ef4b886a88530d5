package finance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/analysis"
	"portfolioRisk/internal/storage"
)

// Cached serves closes and caps from the sqlite store while rows are younger than
// ttl and falls through to the wrapped sources otherwise.
type Cached struct {
	prices PriceSource
	caps   CapSource
	store  *storage.Store
	ttl    time.Duration
	log    *logrus.Logger
}

func NewCached(prices PriceSource, caps CapSource, store *storage.Store, ttl time.Duration, log *logrus.Logger) *Cached {
	return &Cached{prices: prices, caps: caps, store: store, ttl: ttl, log: log}
}

func (c *Cached) DailyCloses(ctx context.Context, symbol string, start time.Time) (analysis.Series, error) {
	symbol = NormalizeSymbol(symbol)
	entry := c.log.WithFields(logrus.Fields{"symbol": symbol, "component": "cache"})

	rows, err := c.store.LoadCloses(ctx, symbol, start, c.ttl)
	if err == nil && len(rows) > 0 {
		entry.Debugf("serving %d cached closes", len(rows))
		s := analysis.Series{Symbol: symbol}
		for _, r := range rows {
			s.Dates = append(s.Dates, r.Day)
			s.Values = append(s.Values, r.Close)
		}
		return s, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		entry.Warnf("cache read failed: %v", err)
	}

	s, err := c.prices.DailyCloses(ctx, symbol, start)
	if err != nil {
		return analysis.Series{}, err
	}
	rows = make([]storage.Close, s.Len())
	for i := range s.Dates {
		rows[i] = storage.Close{Day: s.Dates[i], Close: s.Values[i]}
	}
	if err := c.store.SaveCloses(ctx, symbol, start, rows); err != nil {
		entry.Warnf("cache write failed: %v", err)
	}
	return s, nil
}

func (c *Cached) MarketCap(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)
	entry := c.log.WithFields(logrus.Fields{"symbol": symbol, "component": "cache"})

	v, err := c.store.LoadMarketCap(ctx, symbol, c.ttl)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		entry.Warnf("cache read failed: %v", err)
	}

	v, err = c.caps.MarketCap(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.store.SaveMarketCap(ctx, symbol, v); err != nil {
		entry.Warnf("cache write failed: %v", err)
	}
	return v, nil
}
