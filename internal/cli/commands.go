package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"portfolioRisk/internal/app"
	"portfolioRisk/internal/config"
	"portfolioRisk/internal/logging"
	"portfolioRisk/internal/report"
)

// Analyzer runs the portfolio and screening analyses.
type Analyzer interface {
	Portfolio(ctx context.Context, req app.PortfolioRequest) (*app.Output, error)
	Screen(ctx context.Context, symbols []string) (*app.Output, error)
}

// OpenFunc builds the analyzer for a loaded configuration; the returned func releases it.
type OpenFunc func(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Analyzer, func() error, error)

func openService(ctx context.Context, cfg *config.Config, log *logrus.Logger) (Analyzer, func() error, error) {
	return app.Open(ctx, cfg, log)
}

type env struct {
	open     OpenFunc
	prompter Prompter

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCmd creates the risk command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{open: openService, prompter: surveyPrompter{}})
}

func newRootCmd(e *env) *cobra.Command {
	var cfgFile, logLevel string
	rootCmd := &cobra.Command{
		Use:   "risk",
		Short: "Portfolio risk and stock screening from daily closes",
		Long: `risk downloads daily closing prices from Yahoo Finance and produces charts and
a report for a market-cap weighted portfolio or a risk/reward screen of tickers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg
			e.log = logging.NewWithOutput(cmd.ErrOrStderr(), cfg.LogLevel, false)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newPortfolioCmd(e))
	rootCmd.AddCommand(newScreenCmd(e))
	rootCmd.AddCommand(newConfigCmd(e))
	return rootCmd
}

func newPortfolioCmd(e *env) *cobra.Command {
	var req app.PortfolioRequest
	var outDir string
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Analyze the market-cap weighted portfolio",
		Long: `Download closes for every ticker, weight them by market cap and chart prices,
cumulative return, risk vs return, market caps, max drawdowns and beta against the benchmark.
Example: risk portfolio --tickers NVDA,AMD,INTC --start 10y`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, outDir, "portfolio", func(ctx context.Context, a Analyzer) (*app.Output, error) {
				return a.Portfolio(ctx, req)
			})
		},
	}
	cmd.Flags().StringSliceVar(&req.Tickers, "tickers", nil, "Tickers to weight (default from config)")
	cmd.Flags().StringVar(&req.Start, "start", "", "History start: YYYY-MM-DD, max, or a window like 5y")
	cmd.Flags().StringVar(&req.Benchmark, "benchmark", "", "Benchmark ticker for beta (default SPY)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for chart PNGs (default output.dir)")
	return cmd
}

func newScreenCmd(e *env) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "screen [SYMBOL...]",
		Short: "Screen tickers by annualized return, volatility and risk/reward",
		Long: `Screen each ticker over its full daily history. Without arguments the tickers are
asked for interactively. Example: risk screen AAPL TSLA INFY.NS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := args
			if len(symbols) == 0 {
				var err error
				if symbols, err = promptSymbols(e.prompter); err != nil {
					return err
				}
			}
			return e.run(cmd, outDir, "screen", func(ctx context.Context, a Analyzer) (*app.Output, error) {
				return a.Screen(ctx, symbols)
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for chart PNGs (default output.dir)")
	return cmd
}

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *e.cfg
			shown.Telegram.BotToken = mask(shown.Telegram.BotToken)
			shown.OpenAI.APIKey = mask(shown.OpenAI.APIKey)
			b, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	})
	return cmd
}

func (e *env) run(cmd *cobra.Command, outDir, prefix string, analyze func(context.Context, Analyzer) (*app.Output, error)) error {
	w := cmd.OutOrStdout()
	a, closeFn, err := e.open(cmd.Context(), e.cfg, e.log)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := analyze(cmd.Context(), a)
	if out != nil && out.Markdown != "" {
		printReport(w, out.Markdown, e.cfg.Report.Style)
	}
	if err != nil {
		return err
	}

	if outDir == "" {
		outDir = e.cfg.Output.Dir
	}
	paths, err := out.Charts.Save(outDir, prefix)
	if err != nil {
		return err
	}
	printTitle(w, fmt.Sprintf("%d charts written", len(paths)))
	for _, p := range paths {
		printPath(w, p)
	}
	if out.Commentary != "" {
		printTitle(w, "Commentary")
		printCommentary(w, out.Commentary)
	}
	return nil
}

func printReport(w io.Writer, markdown, style string) {
	rendered, err := report.Render(markdown, style, 100)
	if err != nil {
		printWarn(w, "report rendering failed, showing markdown: "+err.Error())
		rendered = markdown
	}
	fmt.Fprint(w, rendered)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
