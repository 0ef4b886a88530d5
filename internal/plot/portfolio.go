package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"portfolioRisk/internal/analysis"
	"portfolioRisk/internal/pipeline"
)

var (
	orange = drawing.ColorFromHex("ff8c00")
	green  = drawing.ColorFromHex("2e8b57")
)

// RenderPortfolio draws the portfolio dashboard: prices, cumulative return, risk vs
// return, market caps, drawdowns, betas and the weight split.
func RenderPortfolio(res *pipeline.PortfolioResult, opt Options) (*Set, error) {
	set := &Set{}
	period := fmt.Sprintf("%s to %s", res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"))

	img, err := renderLines(lineInput{
		title:    "Stock Prices Over Time",
		subtitle: period,
		dates:    res.Prices.Dates,
		names:    res.Prices.Symbols,
		values:   res.Prices.Columns,
	}, opt)
	if err != nil {
		return nil, fmt.Errorf("prices chart: %w", err)
	}
	set.add("prices", "Stock Prices Over Time", img)

	img, err = renderLines(lineInput{
		title:    "Portfolio Cumulative Return (%)",
		subtitle: fmt.Sprintf("Cumulative Return (%%) • %s", period),
		dates:    res.Index.Dates,
		values:   [][]float64{res.CumulativeReturnPct()},
	}, opt)
	if err != nil {
		return nil, fmt.Errorf("cumulative chart: %w", err)
	}
	set.add("cumulative", "Portfolio Cumulative Return (%)", img)

	points := make([]Point, 0, len(res.Holdings)+1)
	for _, h := range res.Holdings {
		points = append(points, Point{Label: h.Symbol, X: h.StdReturn, Y: h.MeanReturn})
	}
	points = append(points, Point{Label: "Portfolio", X: res.StdReturn, Y: res.MeanReturn, Highlight: true})
	img, err = renderScatter("Mean vs Std Dev (%)", "Std Dev (%)", "Mean Return (%)", points, opt)
	if err != nil {
		return nil, fmt.Errorf("risk/return chart: %w", err)
	}
	set.add("risk_return", "Mean vs Std Dev (%)", img)

	labels := make([]string, len(res.Holdings))
	caps := make([]float64, len(res.Holdings))
	for i, h := range res.Holdings {
		labels[i] = h.Symbol
		caps[i] = h.MarketCap.Shift(-9).InexactFloat64()
	}
	img, err = renderBars("Market Cap (USD billions)", "Billions USD", labels, caps, opt)
	if err != nil {
		return nil, fmt.Errorf("market cap chart: %w", err)
	}
	set.add("market_caps", "Market Cap (USD billions)", img)

	dd := make([]float64, 0, len(res.Holdings)+1)
	betas := make([]float64, 0, len(res.Holdings)+1)
	for _, h := range res.Holdings {
		dd = append(dd, h.MaxDrawdown)
		betas = append(betas, h.Beta)
	}
	withPortfolio := append(append([]string{}, labels...), "Portfolio")

	img, err = renderSignedBars("Max Drawdown (%)", withPortfolio, append(dd, res.MaxDrawdown), orange, opt)
	if err != nil {
		return nil, fmt.Errorf("drawdown chart: %w", err)
	}
	set.add("drawdowns", "Max Drawdown (%)", img)

	betaTitle := "Beta vs " + res.Benchmark
	img, err = renderSignedBars(betaTitle, withPortfolio, append(betas, res.Beta), green, opt)
	if err != nil {
		return nil, fmt.Errorf("beta chart: %w", err)
	}
	set.add("betas", betaTitle, img)

	img, err = renderPie("Portfolio Weights", res.Weights.Symbols, res.Weights.Values, opt)
	if err != nil {
		return nil, fmt.Errorf("weights chart: %w", err)
	}
	set.add("weights", "Portfolio Weights", img)

	return set, nil
}

// RenderScreen draws the screening charts: daily closes, annualized risk vs return
// and the risk/reward ratio per ticker.
func RenderScreen(res *pipeline.ScreenResult, opt Options) (*Set, error) {
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("no ticker to chart: %w", analysis.ErrInsufficientData)
	}
	set := &Set{}

	closes := make([]analysis.Series, len(res.Rows))
	for i, r := range res.Rows {
		closes[i] = r.Closes
	}
	dates, cols := analysis.UnionDates(closes)
	img, err := renderLines(lineInput{
		title:  "Daily Closing Prices",
		dates:  dates,
		names:  res.Symbols(),
		values: cols,
		gaps:   true,
	}, opt)
	if err != nil {
		return nil, fmt.Errorf("closes chart: %w", err)
	}
	set.add("closes", "Daily Closing Prices", img)

	points := make([]Point, len(res.Rows))
	labels := make([]string, len(res.Rows))
	ratios := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		points[i] = Point{Label: r.Symbol, X: r.Stats.Volatility, Y: r.Stats.Return}
		labels[i] = r.Symbol
		ratios[i] = r.Stats.Ratio
	}
	capInfiniteRatios(labels, ratios)
	img, err = renderScatter("Risk vs Return (Annualized)", "Annualized Std Dev (Risk)", "Annualized Mean Return", points, opt)
	if err != nil {
		return nil, fmt.Errorf("risk/return chart: %w", err)
	}
	set.add("risk_return", "Risk vs Return (Annualized)", img)

	img, err = renderSignedBars("Risk-Reward Ratio (Lower is Better)", labels, ratios, drawing.ColorFromHex("4682b4"), opt)
	if err != nil {
		return nil, fmt.Errorf("risk/reward chart: %w", err)
	}
	set.add("risk_reward", "Risk-Reward Ratio (Lower is Better)", img)

	return set, nil
}

// capInfiniteRatios replaces infinite ratios with a bar 20% above the largest finite one
// and marks their labels, so an undefined ratio never reads as the best one.
func capInfiniteRatios(labels []string, ratios []float64) {
	top := 0.0
	for _, v := range ratios {
		if finite(v) {
			top = math.Max(top, v)
		}
	}
	top *= 1.2
	if top == 0 {
		top = 1
	}
	for i, v := range ratios {
		if math.IsInf(v, 0) {
			ratios[i] = top
			labels[i] += " (inf)"
		}
	}
}
