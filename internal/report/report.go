package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"portfolioRisk/internal/pipeline"
)

// Portfolio renders the weighted portfolio statistics as markdown.
func Portfolio(res *pipeline.PortfolioResult) string {
	var b strings.Builder
	b.WriteString("# Market-cap weighted portfolio\n\n")
	fmt.Fprintf(&b, "Period **%s** to **%s** (%d trading days), benchmark **%s**.\n\n",
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), len(res.Prices.Dates), res.Benchmark)

	b.WriteString("| Ticker | Weight | Market cap (USD bn) | Mean (%) | Std (%) | Max drawdown (%) | Beta |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	total := decimal.Zero
	for _, h := range res.Holdings {
		total = total.Add(h.MarketCap)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			h.Symbol, pct(h.Weight), billions(h.MarketCap), num(h.MeanReturn, 3), num(h.StdReturn, 3),
			num(h.MaxDrawdown, 2), num(h.Beta, 2))
	}
	fmt.Fprintf(&b, "| **Portfolio** | %s | %s | %s | %s | %s | %s |\n\n",
		pct(res.Weights.Sum()), billions(total), num(res.MeanReturn, 3), num(res.StdReturn, 3),
		num(res.MaxDrawdown, 2), num(res.Beta, 2))

	fmt.Fprintf(&b, "Cumulative return: **%s%%**\n", num(last(res.CumulativeReturnPct()), 2))
	if len(res.Excluded) > 0 {
		fmt.Fprintf(&b, "\nExcluded (no market cap): %s\n", strings.Join(res.Excluded, ", "))
	}
	return b.String()
}

// Screen renders the annualized screening table as markdown. Tickers with a zero mean
// return have an infinite ratio, charted as 0.
func Screen(res *pipeline.ScreenResult) string {
	var b strings.Builder
	b.WriteString("# Risk/reward screen\n\n")
	if len(res.Rows) > 0 {
		b.WriteString("| Ticker | Days | Annualized return | Annualized std | Risk/Reward | Last vs SMA |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|\n")
		infinite := false
		for _, r := range res.Rows {
			ratio := num(r.Stats.Ratio, 3)
			if math.IsInf(r.Stats.Ratio, 1) {
				ratio = "∞ *"
				infinite = true
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n",
				r.Symbol, r.Closes.Len(), num(r.Stats.Return, 4), num(r.Stats.Volatility, 4), ratio, r.Trend)
		}
		if infinite {
			b.WriteString("\n\\* zero mean return, drawn as the capped (inf) bar on the ratio chart\n")
		}
	} else {
		b.WriteString("No ticker could be analyzed.\n")
	}
	if len(res.Failures) > 0 {
		b.WriteString("\n")
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// Render formats markdown for the terminal with the given glamour style
// ("auto", "dark", "light", "notty", ...).
func Render(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(markdown)
}

func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

func billions(v decimal.Decimal) string {
	return v.Shift(-9).StringFixed(1)
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
