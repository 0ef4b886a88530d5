package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioRisk/internal/app"
	"portfolioRisk/internal/plot"
)

type recorder struct {
	mu     sync.Mutex
	photos []tgbotapi.PhotoConfig
	texts  []string
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.PhotoConfig:
		r.photos = append(r.photos, v)
	case tgbotapi.MessageConfig:
		r.texts = append(r.texts, v.Text)
	}
	return tgbotapi.Message{}, nil
}

type fakeAnalyzer struct {
	portfolioReqs []app.PortfolioRequest
	screens       [][]string
	screenErr     error
}

func chartSet(names ...string) *plot.Set {
	set := &plot.Set{}
	for _, n := range names {
		set.Charts = append(set.Charts, plot.Chart{Name: n, Title: strings.ToUpper(n), PNG: []byte{0x89, 'P', 'N', 'G'}})
	}
	return set
}

func (f *fakeAnalyzer) Portfolio(_ context.Context, req app.PortfolioRequest) (*app.Output, error) {
	f.portfolioReqs = append(f.portfolioReqs, req)
	return &app.Output{Charts: chartSet("prices", "betas"), Markdown: "# portfolio", Commentary: "looks concentrated"}, nil
}

func (f *fakeAnalyzer) Screen(_ context.Context, symbols []string) (*app.Output, error) {
	f.screens = append(f.screens, symbols)
	if f.screenErr != nil {
		return &app.Output{Markdown: "- Failed to process ZZZ: no data"}, f.screenErr
	}
	return &app.Output{Charts: chartSet("closes", "risk_return", "risk_reward"), Markdown: "# screen"}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 42}}
}

func TestScreenCommandSendsChartsAndCaches(t *testing.T) {
	rec, an := &recorder{}, &fakeAnalyzer{}
	h := NewHandlers(rec, an, quietLogger())

	h.HandleMessage(message("/screen aapl, tsla aapl"))
	h.HandleMessage(message("/screen@RiskBot AAPL TSLA"))

	require.Len(t, an.screens, 1)
	assert.Equal(t, []string{"AAPL", "TSLA"}, an.screens[0])
	assert.Len(t, rec.photos, 6)
	assert.Equal(t, "CLOSES", rec.photos[0].Caption)
	assert.Equal(t, []string{"# screen", "# screen"}, rec.texts)
}

func TestPortfolioCommand(t *testing.T) {
	rec, an := &recorder{}, &fakeAnalyzer{}
	h := NewHandlers(rec, an, quietLogger())

	h.HandleMessage(message("/portfolio"))
	h.HandleMessage(message("/portfolio nvda amd"))

	require.Len(t, an.portfolioReqs, 2)
	assert.Empty(t, an.portfolioReqs[0].Tickers)
	assert.Equal(t, []string{"NVDA", "AMD"}, an.portfolioReqs[1].Tickers)
	assert.Len(t, rec.photos, 4)
	assert.Contains(t, rec.texts, "# portfolio\nlooks concentrated")
}

func TestScreenFailureAndUsage(t *testing.T) {
	rec := &recorder{}
	an := &fakeAnalyzer{screenErr: errors.New("no symbol could be analyzed")}
	h := NewHandlers(rec, an, quietLogger())

	h.HandleMessage(message("/screen"))
	h.HandleMessage(message("/screen ZZZ"))
	h.HandleMessage(message("/portfolio AAPL;"))
	h.HandleMessage(message("hello there"))

	assert.Empty(t, rec.photos)
	require.Len(t, rec.texts, 4)
	assert.Contains(t, rec.texts[0], "at least one symbol")
	assert.Equal(t, "- Failed to process ZZZ: no data", rec.texts[1])
	assert.Equal(t, "Screen failed: no symbol could be analyzed", rec.texts[2])
	assert.Contains(t, rec.texts[3], "invalid symbol")
}

func TestScreenPassesMalformedSymbolsToAnalyzer(t *testing.T) {
	rec, an := &recorder{}, &fakeAnalyzer{}
	h := NewHandlers(rec, an, quietLogger())

	h.HandleMessage(message("/screen aapl AAPL; m&m.ns"))

	require.Len(t, an.screens, 1)
	assert.Equal(t, []string{"AAPL", "AAPL;", "M&M.NS"}, an.screens[0])
}

func TestHelpCommand(t *testing.T) {
	rec := &recorder{}
	NewHandlers(rec, &fakeAnalyzer{}, quietLogger()).HandleMessage(message("/help@RiskBot"))
	require.Len(t, rec.texts, 1)
	assert.Contains(t, rec.texts[0], "/portfolio")
	assert.Contains(t, rec.texts[0], "/screen")
}

func TestWebhookRejectsBadUpdate(t *testing.T) {
	h := NewHandlers(&recorder{}, &fakeAnalyzer{}, quietLogger())

	w := httptest.NewRecorder()
	handleUpdate(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{")), h, quietLogger())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handleUpdate(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{"update_id":1}`)), h, quietLogger())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, parts)

	parts = splitMessage(strings.Repeat("∞", 25), 10)
	require.Len(t, parts, 3)
	assert.Equal(t, strings.Repeat("∞", 10), parts[0])
	assert.Equal(t, strings.Repeat("∞", 5), parts[2])
}

func TestLongReportIsSentInParts(t *testing.T) {
	rec := &recorder{}
	h := NewHandlers(rec, &fakeAnalyzer{}, quietLogger())

	line := strings.Repeat("x", 99) + "\n"
	h.reply(42, strings.Repeat(line, 100))

	require.Len(t, rec.texts, 3)
	for _, txt := range rec.texts {
		assert.LessOrEqual(t, len([]rune(txt)), maxMessageRunes)
	}
	assert.Equal(t, strings.Repeat(line, 100), strings.Join(rec.texts, "\n"))
}
