package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/config"
	"portfolioRisk/internal/finance"
	"portfolioRisk/internal/openai"
	"portfolioRisk/internal/pipeline"
	"portfolioRisk/internal/plot"
	"portfolioRisk/internal/report"
	"portfolioRisk/internal/storage"
)

// Commentator writes a narrative for a markdown report.
type Commentator interface {
	Comment(ctx context.Context, report string) (string, error)
}

// Output is what one analysis run produces for the CLI and the bot.
type Output struct {
	Charts     *plot.Set
	Markdown   string
	Commentary string
}

// Service runs the analysis pipelines and renders their output.
type Service struct {
	prices     finance.PriceSource
	caps       finance.CapSource
	commentary Commentator
	cfg        *config.Config
	now        func() time.Time
	log        *logrus.Logger
}

func NewService(prices finance.PriceSource, caps finance.CapSource, commentary Commentator, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{prices: prices, caps: caps, commentary: commentary, cfg: cfg, now: time.Now, log: log}
}

// Open wires the Yahoo clients, the sqlite cache when data.cache_path is set, and the
// OpenAI commentator when openai.api_key is set. The returned func releases the cache.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Service, func() error, error) {
	yahoo := finance.NewYahooClient(cfg.Data.Timeout, log)
	var prices finance.PriceSource = yahoo
	var caps finance.CapSource = finance.NewCapClient(yahoo, log)
	closer := func() error { return nil }

	if cfg.Data.CachePath != "" {
		// Ensure parent directory for the DB exists
		_ = os.MkdirAll(filepath.Dir(cfg.Data.CachePath), 0o755)
		db, err := storage.OpenSQLite("file:" + cfg.Data.CachePath + "?_busy_timeout=5000")
		if err != nil {
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		if err := storage.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.WithField("component", "cache").Debugf("sqlite cache at %s", cfg.Data.CachePath)
		cached := finance.NewCached(prices, caps, storage.NewStore(db), cfg.Data.CacheTTL, log)
		prices, caps = cached, cached
		closer = db.Close
	}

	var commentary Commentator
	if cfg.OpenAI.APIKey != "" {
		commentary = openai.NewCommentator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	return NewService(prices, caps, commentary, cfg, log), closer, nil
}

// PortfolioRequest overrides the configured portfolio; zero fields keep the config.
type PortfolioRequest struct {
	Tickers   []string
	Start     string
	Benchmark string
}

func (s *Service) Portfolio(ctx context.Context, req PortfolioRequest) (*Output, error) {
	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = s.cfg.Portfolio.Tickers
	}
	tickers, err := finance.ParseSymbols(tickers...)
	if err != nil {
		return nil, err
	}
	startValue := req.Start
	if startValue == "" {
		startValue = s.cfg.Portfolio.Start
	}
	start, err := finance.ParseStart(startValue, s.now())
	if err != nil {
		return nil, err
	}
	bench := req.Benchmark
	if bench == "" {
		bench = s.cfg.Portfolio.Benchmark
	}
	if bench, err = finance.ValidateSymbol(bench); err != nil {
		return nil, err
	}

	res, err := pipeline.NewPortfolio(s.prices, s.caps, pipeline.PortfolioConfig{
		Tickers:   tickers,
		Benchmark: bench,
		Start:     start,
	}, s.log).Run(ctx)
	if err != nil {
		return nil, err
	}
	out := &Output{Markdown: report.Portfolio(res)}
	if out.Charts, err = plot.RenderPortfolio(res, s.chartOptions()); err != nil {
		return out, err
	}
	s.comment(ctx, out)
	return out, nil
}

// Screen analyses symbols one by one. Per-ticker failures, malformed tickers included,
// are part of the output; an error is returned only when nothing could be analyzed or
// charted, and then Output still carries the report.
func (s *Service) Screen(ctx context.Context, symbols []string) (*Output, error) {
	symbols = finance.SplitSymbols(symbols...)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to screen")
	}
	start, err := finance.ParseStart(s.cfg.Screen.Period, s.now())
	if err != nil {
		return nil, err
	}
	res, err := pipeline.NewScreen(s.prices, pipeline.ScreenConfig{
		Start:     start,
		SMAPeriod: s.cfg.Screen.SMAPeriod,
	}, s.log).Run(ctx, symbols)
	if err != nil {
		return nil, err
	}
	out := &Output{Markdown: report.Screen(res)}
	if len(res.Rows) == 0 {
		return out, fmt.Errorf("no symbol could be analyzed (%d failed)", len(res.Failures))
	}
	if out.Charts, err = plot.RenderScreen(res, s.chartOptions()); err != nil {
		return out, err
	}
	s.comment(ctx, out)
	return out, nil
}

func (s *Service) comment(ctx context.Context, out *Output) {
	if s.commentary == nil {
		return
	}
	text, err := s.commentary.Comment(ctx, out.Markdown)
	if err != nil {
		s.log.WithField("component", "commentary").Warnf("commentary skipped: %v", err)
		return
	}
	out.Commentary = text
}

func (s *Service) chartOptions() plot.Options {
	return plot.Options{Width: s.cfg.Output.Width, Height: s.cfg.Output.Height}
}
