package finance

import (
	"fmt"
	"regexp"
	"strings"
)

// Yahoo tickers carry exchange suffixes and punctuation: BRK-B, ^GSPC, M&M.NS, BAJAJ-AUTO.NS.
var symbolRe = regexp.MustCompile(`^[A-Z0-9.^=_&+-]{1,20}$`)

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateSymbol normalizes s and checks it looks like an exchange ticker.
func ValidateSymbol(s string) (string, error) {
	sym := NormalizeSymbol(s)
	if sym == "" {
		return "", fmt.Errorf("empty symbol")
	}
	if !symbolRe.MatchString(sym) {
		return "", fmt.Errorf("invalid symbol %q", s)
	}
	return sym, nil
}

// SplitSymbols splits a free-form list (spaces or commas) into normalized tickers,
// dropping duplicates while keeping first-seen order. Entries are not validated.
func SplitSymbols(input ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, chunk := range input {
		fields := strings.FieldsFunc(chunk, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		for _, f := range fields {
			sym := NormalizeSymbol(f)
			if seen[sym] {
				continue
			}
			seen[sym] = true
			out = append(out, sym)
		}
	}
	return out
}

// ParseSymbols is SplitSymbols with every entry validated; the first invalid entry
// fails the whole list.
func ParseSymbols(input ...string) ([]string, error) {
	syms := SplitSymbols(input...)
	for _, sym := range syms {
		if _, err := ValidateSymbol(sym); err != nil {
			return nil, err
		}
	}
	return syms, nil
}
