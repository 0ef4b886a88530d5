package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultHome = "https://finance.yahoo.com"

// yahooQuoteResp mirrors Yahoo v7 quote response (trimmed)
type yahooQuoteResp struct {
	QuoteResponse struct {
		Result []struct {
			Symbol    string           `json:"symbol"`
			MarketCap *decimal.Decimal `json:"marketCap"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

// WithHome replaces the page visited for the session cookie before asking for a crumb.
func (c *YahooClient) WithHome(home string) *YahooClient {
	c.home = home
	return c
}

// MarketCap reads marketCap from the v7 quote endpoint. The endpoint needs the session
// cookie and a crumb, fetched once and reused until a quote call fails.
func (c *YahooClient) MarketCap(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: %v", symbol, ErrNoMarketCap, err)
	}
	body, err := c.get(ctx, "/v7/finance/quote", symbol, map[string]string{
		"symbols": symbol,
		"fields":  "marketCap",
		"crumb":   crumb,
	})
	if err != nil {
		c.resetCrumb()
		return decimal.Zero, fmt.Errorf("%s: %w: %v", symbol, ErrNoMarketCap, err)
	}
	var q yahooQuoteResp
	if err := json.Unmarshal(body, &q); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse yahoo quote json: %v; body: %s", err, preview(body))
	}
	if q.QuoteResponse.Error != nil {
		return decimal.Zero, fmt.Errorf("%s: %w: %v", symbol, ErrNoMarketCap, q.QuoteResponse.Error)
	}
	for _, r := range q.QuoteResponse.Result {
		if NormalizeSymbol(r.Symbol) != symbol || r.MarketCap == nil || !r.MarketCap.IsPositive() {
			continue
		}
		return *r.MarketCap, nil
	}
	return decimal.Zero, fmt.Errorf("%s: %w", symbol, ErrNoMarketCap)
}

func (c *YahooClient) sessionCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}
	entry := c.log.WithField("component", "yahoo")

	// 1. session cookie from the main page; the status does not matter, the cookie does
	if _, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Get(c.home); err != nil {
		return "", fmt.Errorf("failed to get cookie: %w", err)
	}

	// 2. crumb bound to that cookie
	var lastErr error
	for _, host := range c.hosts {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Origin", c.home).
			SetHeader("Referer", strings.TrimRight(c.home, "/")+"/").
			Get(strings.TrimRight(host, "/") + "/v1/test/getcrumb")
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}
		crumb := strings.TrimSpace(string(resp.Body()))
		if resp.StatusCode() != http.StatusOK || crumb == "" || strings.Contains(crumb, "html") {
			lastErr = fmt.Errorf("invalid crumb from %s (%d): %s", host, resp.StatusCode(), preview(resp.Body()))
			continue
		}
		entry.Debug("yahoo crumb acquired")
		c.crumb = crumb
		return crumb, nil
	}
	entry.WithFields(logrus.Fields{"home": c.home}).Warnf("crumb handshake failed: %v", lastErr)
	return "", lastErr
}

func (c *YahooClient) resetCrumb() {
	c.crumbMu.Lock()
	c.crumb = ""
	c.crumbMu.Unlock()
}
