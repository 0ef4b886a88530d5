package finance

import (
	"context"
	"errors"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CapClient reads market capitalization from a primary quote source, falling back to
// the piquette issuer metadata lookup.
type CapClient struct {
	primary CapSource
	lookup  func(symbol string) (*finance.Equity, error)
	log     *logrus.Logger
}

// NewCapClient returns a client asking primary first; a nil primary uses the
// lookup alone.
func NewCapClient(primary CapSource, log *logrus.Logger) *CapClient {
	return &CapClient{primary: primary, lookup: equity.Get, log: log}
}

// MarketCap returns the latest market capitalization of symbol. A missing or zero
// value from every source is reported as ErrNoMarketCap.
func (c *CapClient) MarketCap(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	symbol = NormalizeSymbol(symbol)
	entry := c.log.WithFields(logrus.Fields{"symbol": symbol, "component": "caps"})

	var primaryErr error
	if c.primary != nil {
		v, err := c.primary.MarketCap(ctx, symbol)
		if err == nil {
			entry.Debugf("market cap %s", v)
			return v, nil
		}
		if ctx.Err() != nil {
			return decimal.Zero, ctx.Err()
		}
		entry.Debugf("quote market cap failed, trying issuer metadata: %v", err)
		primaryErr = err
	}

	eq, err := c.lookup(symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, errors.Join(ErrNoMarketCap, primaryErr, err))
	}
	if eq == nil || eq.MarketCap <= 0 {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, errors.Join(ErrNoMarketCap, primaryErr))
	}
	entry.Debugf("market cap %d", eq.MarketCap)
	return decimal.NewFromInt(eq.MarketCap), nil
}
