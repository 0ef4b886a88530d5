package telegram

import (
	"context"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"portfolioRisk/internal/app"
	"portfolioRisk/internal/finance"
	"portfolioRisk/internal/plot"
)

var (
	// /portfolio [S1 S2 ...]
	rePortfolio = regexp.MustCompile(`^/portfolio(?:@[\w_]+)?(?:\s+(.+))?$`)
	// /screen S1 [S2 ...]
	reScreen = regexp.MustCompile(`^/screen(?:@[\w_]+)?(?:\s+(.+))?$`)
	// /help
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

const (
	chartCacheTTL = 10 * time.Minute
	// Telegram rejects messages over 4096 characters
	maxMessageRunes = 4000
)

// Analyzer runs the analyses behind the bot commands.
type Analyzer interface {
	Portfolio(ctx context.Context, req app.PortfolioRequest) (*app.Output, error)
	Screen(ctx context.Context, symbols []string) (*app.Output, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handlers struct {
	api      sender
	analyzer Analyzer
	cache    *plot.Cache
	timeout  time.Duration
	log      *logrus.Logger
}

func NewHandlers(api sender, analyzer Analyzer, log *logrus.Logger) *Handlers {
	return &Handlers{
		api:      api,
		analyzer: analyzer,
		cache:    plot.NewCache(chartCacheTTL),
		timeout:  2 * time.Minute,
		log:      log,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	switch {
	case reHelp.MatchString(txt):
		h.handleHelp(m.Chat.ID)

	case rePortfolio.MatchString(txt):
		g := rePortfolio.FindStringSubmatch(txt)
		syms, err := finance.ParseSymbols(g[1])
		if err != nil {
			h.reply(m.Chat.ID, err.Error())
			return
		}
		h.handlePortfolio(m.Chat.ID, syms)

	case reScreen.MatchString(txt):
		g := reScreen.FindStringSubmatch(txt)
		syms := finance.SplitSymbols(g[1])
		if len(syms) == 0 {
			h.reply(m.Chat.ID, "Please provide at least one symbol, e.g. /screen AAPL TSLA INFY.NS")
			return
		}
		h.handleScreen(m.Chat.ID, syms)
	}
}

func (h *Handlers) handlePortfolio(chatID int64, syms []string) {
	key := "portfolio:" + strings.Join(syms, ",")
	if set, text, ok := h.cache.Get(key); ok {
		h.sendOutput(chatID, set, text)
		return
	}
	h.reply(chatID, "Running portfolio analysis…")
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	out, err := h.analyzer.Portfolio(ctx, app.PortfolioRequest{Tickers: syms})
	if err != nil {
		if out != nil {
			h.reply(chatID, out.Markdown)
		}
		h.reply(chatID, "Portfolio failed: "+err.Error())
		return
	}
	text := outputText(out)
	h.cache.Set(key, out.Charts, text)
	h.sendOutput(chatID, out.Charts, text)
}

func (h *Handlers) handleScreen(chatID int64, syms []string) {
	key := "screen:" + strings.Join(syms, ",")
	if set, text, ok := h.cache.Get(key); ok {
		h.sendOutput(chatID, set, text)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	out, err := h.analyzer.Screen(ctx, syms)
	if err != nil {
		if out != nil {
			h.reply(chatID, out.Markdown)
		}
		h.reply(chatID, "Screen failed: "+err.Error())
		return
	}
	text := outputText(out)
	h.cache.Set(key, out.Charts, text)
	h.sendOutput(chatID, out.Charts, text)
}

func (h *Handlers) sendOutput(chatID int64, set *plot.Set, text string) {
	if set != nil {
		for _, c := range set.Charts {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: c.Name + ".png", Bytes: c.PNG})
			photo.Caption = c.Title
			if _, err := h.api.Send(photo); err != nil {
				h.log.WithFields(logrus.Fields{"component": "telegram", "chart": c.Name}).Warnf("send photo: %v", err)
			}
		}
	}
	h.reply(chatID, text)
}

func outputText(out *app.Output) string {
	if out.Commentary == "" {
		return out.Markdown
	}
	return out.Markdown + "\n" + out.Commentary
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /portfolio [S1 S2 ...] - Market-cap weighted portfolio: prices, cumulative return, risk vs return, market caps, drawdowns, beta vs SPY\n" +
		"- /screen S1 [S2 ...] - Annualized return, volatility and risk/reward ratio per ticker (lower is better)\n" +
		"\nWithout symbols /portfolio uses the configured basket. Daily closes from Yahoo; charts are cached for 10 minutes."
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageRunes) {
		if _, err := h.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			h.log.WithField("component", "telegram").Warnf("send message: %v", err)
		}
	}
}

// splitMessage cuts text into parts of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
