package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/analysis"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

var (
	defaultHosts    = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}
	defaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
)

// YahooClient downloads daily closes from the Yahoo chart API and market caps from the
// quote API.
type YahooClient struct {
	http     *resty.Client
	hosts    []string
	home     string
	backoffs []time.Duration
	now      func() time.Time
	log      *logrus.Logger

	crumbMu sync.Mutex
	crumb   string
}

// NewYahooClient returns a client hitting query1 then query2 with the default backoff schedule.
func NewYahooClient(timeout time.Duration, log *logrus.Logger) *YahooClient {
	jar, _ := cookiejar.New(nil)
	client := resty.New().
		SetCookieJar(jar).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json, text/javascript, */*; q=0.01").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &YahooClient{
		http:     client,
		hosts:    defaultHosts,
		home:     defaultHome,
		backoffs: defaultBackoffs,
		now:      time.Now,
		log:      log,
	}
}

// WithHosts replaces the base URLs tried in order on every attempt.
func (c *YahooClient) WithHosts(hosts ...string) *YahooClient {
	c.hosts = hosts
	return c
}

// WithBackoffs replaces the sleep schedule between attempts.
func (c *YahooClient) WithBackoffs(backoffs ...time.Duration) *YahooClient {
	c.backoffs = backoffs
	return c
}

// DailyCloses fetches daily closes for symbol from start. The v7 spark endpoint is
// used when every chart attempt fails.
func (c *YahooClient) DailyCloses(ctx context.Context, symbol string, start time.Time) (analysis.Series, error) {
	symbol = NormalizeSymbol(symbol)
	params := map[string]string{
		"interval": "1d",
		"events":   "div,splits",
	}
	if start.IsZero() {
		params["range"] = "max"
	} else {
		params["period1"] = strconv.FormatInt(start.Unix(), 10)
		params["period2"] = strconv.FormatInt(c.now().Unix(), 10)
	}

	body, err := c.get(ctx, "/v8/finance/chart/"+symbol, symbol, params)
	if err == nil {
		s, perr := parseChart(symbol, body, start)
		if perr == nil {
			return s, nil
		}
		err = perr
	}
	if ctx.Err() != nil {
		return analysis.Series{}, ctx.Err()
	}
	c.log.WithFields(logrus.Fields{"symbol": symbol, "component": "yahoo"}).
		Warnf("chart endpoint failed, trying spark: %v", err)

	body, sparkErr := c.get(ctx, "/v7/finance/spark", symbol, map[string]string{
		"symbols":  symbol,
		"range":    "max",
		"interval": "1d",
	})
	if sparkErr != nil {
		return analysis.Series{}, fmt.Errorf("download %s: %w", symbol, errors.Join(err, sparkErr))
	}
	s, sparkErr := parseSpark(symbol, body, start)
	if sparkErr != nil {
		return analysis.Series{}, fmt.Errorf("download %s: %w", symbol, errors.Join(err, sparkErr))
	}
	return s, nil
}

// get performs the request against every host, retrying with backoff until one
// answers with a JSON body.
func (c *YahooClient) get(ctx context.Context, path, symbol string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < len(c.backoffs)+1; attempt++ {
		for _, host := range c.hosts {
			resp, err := c.http.R().
				SetContext(ctx).
				SetHeader("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", symbol)).
				SetQueryParams(params).
				Get(strings.TrimRight(host, "/") + path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				lastErr = err
				continue
			}
			body := resp.Body()
			if resp.StatusCode() == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
				lastErr = fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", host)
				continue
			}
			if resp.StatusCode() != http.StatusOK {
				lastErr = fmt.Errorf("yahoo %s returned %d: %s", host, resp.StatusCode(), preview(body))
				continue
			}
			if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
				lastErr = fmt.Errorf("yahoo returned non-json body: %s", preview(body))
				continue
			}
			return body, nil
		}
		if attempt < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}
	return nil, lastErr
}

func parseChart(symbol string, body []byte, start time.Time) (analysis.Series, error) {
	var yc yahooChartResp
	if err := json.Unmarshal(body, &yc); err != nil {
		return analysis.Series{}, fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
	}
	if yc.Chart.Error != nil {
		return analysis.Series{}, yc.Chart.Error
	}
	if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
		return analysis.Series{}, ErrNoData
	}
	r := yc.Chart.Result[0]
	loc := exchangeLocation(r.Meta.Timezone, r.Meta.GmtOffset)
	closes := r.Indicators.Quote[0].Close
	// dividend and split adjusted closes when Yahoo sends them
	if adj := r.Indicators.AdjClose; len(adj) > 0 && len(adj[0].AdjClose) == len(r.Timestamp) {
		closes = adj[0].AdjClose
	}
	return toSeries(symbol, r.Timestamp, closes, loc, start)
}

func parseSpark(symbol string, body []byte, start time.Time) (analysis.Series, error) {
	var sp yahooSparkResp
	if err := json.Unmarshal(body, &sp); err != nil {
		return analysis.Series{}, fmt.Errorf("failed to parse yahoo spark json: %v", err)
	}
	if sp.Spark.Error != nil {
		return analysis.Series{}, sp.Spark.Error
	}
	if len(sp.Spark.Result) == 0 || len(sp.Spark.Result[0].Response) == 0 {
		return analysis.Series{}, ErrNoData
	}
	r := sp.Spark.Result[0].Response[0]
	return toSeries(symbol, r.Timestamp, r.Close, getEasternTime(), start)
}

// toSeries drops unusable closes, maps timestamps to trading days and keeps the
// last close of a day when the provider repeats one.
func toSeries(symbol string, ts []int64, cl []*float64, loc *time.Location, start time.Time) (analysis.Series, error) {
	ts, vals := filterCloses(ts, cl)
	from := time.Time{}
	if !start.IsZero() {
		from = analysis.Day(start)
	}
	out := analysis.Series{Symbol: symbol}
	for i, t := range ts {
		day := tradingDay(t, loc)
		if day.Before(from) {
			continue
		}
		if n := len(out.Dates); n > 0 && out.Dates[n-1].Equal(day) {
			out.Values[n-1] = vals[i]
			continue
		}
		out.Dates = append(out.Dates, day)
		out.Values = append(out.Values, vals[i])
	}
	if out.Len() == 0 {
		return analysis.Series{}, ErrNoData
	}
	return out, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
