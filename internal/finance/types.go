package finance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"portfolioRisk/internal/analysis"
)

var (
	// ErrNoData is returned when the provider answers without any usable close.
	ErrNoData = errors.New("no data")
	// ErrNoMarketCap is returned when the issuer metadata carries no market capitalization.
	ErrNoMarketCap = errors.New("market cap unavailable")
)

// PriceSource returns daily closing prices of a symbol from start (inclusive).
// A zero start means the full available history.
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string, start time.Time) (analysis.Series, error)
}

// CapSource returns the market capitalization of a symbol in its trading currency.
type CapSource interface {
	MarketCap(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields)
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GmtOffset int    `json:"gmtoffset"`
				Timezone  string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooSparkResp mirrors Yahoo v7 spark fallback (trimmed)
type yahooSparkResp struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64    `json:"timestamp"`
				Close     []*float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"spark"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) Error() string { return e.Code + ": " + e.Description }
