package openai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are a portfolio risk analyst. You receive a markdown report with daily return statistics, maximum drawdowns, betas and annualized risk/reward ratios.

Write a short plain-text commentary:
- Overall risk profile in one or two sentences
- Tickers that stand out (highest beta, deepest drawdown, best and worst risk/reward)
- Concentration risk from the weights, when weights are given
- One line of caveats (history length, excluded tickers)

Do not give buy or sell advice. Do not repeat the tables.`

// Commentator turns an analysis report into a short narrative.
type Commentator struct {
	cli   oa.Client
	model string
}

func NewCommentator(apiKey, model string, opts ...option.RequestOption) *Commentator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Commentator{cli: oa.NewClient(opts...), model: model}
}

func (c *Commentator) Comment(ctx context.Context, report string) (string, error) {
	report = sanitizeReport(report)
	if report == "" {
		return "", errors.New("empty report")
	}
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(c.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage("Comment on this analysis:\n\n" + report),
		},
		MaxTokens: oa.Int(600), // fits one Telegram message
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var reURL = regexp.MustCompile(`https?://\S+`)

const maxReportBytes = 8000

// sanitizeReport strips links and caps the prompt size on a rune boundary.
func sanitizeReport(report string) string {
	text := strings.TrimSpace(reURL.ReplaceAllString(report, ""))
	if len(text) > maxReportBytes {
		cut := maxReportBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
