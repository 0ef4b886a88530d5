package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"portfolioRisk/internal/finance"
)

// Prompter asks the user for the tickers to screen.
type Prompter interface {
	AskCount() (int, error)
	AskSymbol(i int) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) AskCount() (int, error) {
	var answer string
	prompt := &survey.Input{
		Message: "How many stocks do you want to analyze?",
		Help:    "A whole number; you will be asked for each ticker next",
	}
	err := survey.AskOne(prompt, &answer, survey.WithValidator(func(val interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(val.(string)))
		if err != nil || n <= 0 {
			return fmt.Errorf("enter a positive whole number")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func (surveyPrompter) AskSymbol(i int) (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: fmt.Sprintf("Stock %d:", i),
		Help:    "Ticker symbol, e.g. AAPL, TSLA, INFY.NS",
	}
	err := survey.AskOne(prompt, &ticker, survey.WithValidator(survey.Required))
	if err != nil {
		return "", err
	}
	return finance.NormalizeSymbol(ticker), nil
}

// promptSymbols asks for the number of tickers, then for each ticker in turn.
func promptSymbols(p Prompter) ([]string, error) {
	n, err := p.AskCount()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		sym, err := p.AskSymbol(i)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}
