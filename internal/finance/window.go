package finance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolioRisk/internal/analysis"
)

// ParseStart turns a history bound into a start date. It accepts "" or "max" (full
// history, zero time), a date such as 2000-01-01, or a lookback window like 30d, 12w,
// 6m or 5y counted back from now.
func ParseStart(value string, now time.Time) (time.Time, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "max" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	if len(v) < 2 {
		return time.Time{}, fmt.Errorf("invalid start %q (use YYYY-MM-DD, max, or a window like 30d, 12w, 6m, 5y)", value)
	}
	n, err := strconv.Atoi(v[:len(v)-1])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid start %q (use YYYY-MM-DD, max, or a window like 30d, 12w, 6m, 5y)", value)
	}
	today := analysis.Day(now.In(getEasternTime()))
	switch v[len(v)-1] {
	case 'd':
		return today.AddDate(0, 0, -n), nil
	case 'w':
		return today.AddDate(0, 0, -7*n), nil
	case 'm':
		return today.AddDate(0, -n, 0), nil
	case 'y':
		return today.AddDate(-n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid start %q (use YYYY-MM-DD, max, or a window like 30d, 12w, 6m, 5y)", value)
}
