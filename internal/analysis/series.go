package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	// ErrNoCommonDate is returned when a set of series never has a value on the same day.
	ErrNoCommonDate = errors.New("no date on which every series has a value")
	// ErrInsufficientData is returned when a computation needs more observations than it got.
	ErrInsufficientData = errors.New("insufficient data")
)

// Series is an ordered sequence of (date, value) pairs for one ticker.
type Series struct {
	Symbol string
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Values) }

// Last returns the most recent value, NaN when the series is empty.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Day truncates t to its calendar date in t's own location and returns it as UTC midnight,
// so that dates coming from different sources compare and hash equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Frame is a set of series sharing one date axis.
type Frame struct {
	Dates   []time.Time
	Symbols []string
	Columns [][]float64
}

// Column returns the series for symbol, ok=false when the frame has no such column.
func (f *Frame) Column(symbol string) (Series, bool) {
	for i, s := range f.Symbols {
		if s == symbol {
			return Series{Symbol: s, Dates: f.Dates, Values: f.Columns[i]}, true
		}
	}
	return Series{}, false
}

// Series returns every column as a Series, in frame order.
func (f *Frame) Series() []Series {
	out := make([]Series, len(f.Symbols))
	for i, s := range f.Symbols {
		out[i] = Series{Symbol: s, Dates: f.Dates, Values: f.Columns[i]}
	}
	return out
}

// AlignFromCommonStart puts series on the union of their dates, drops every date before
// the first one on which all series have a value, and forward-fills the gaps after it.
func AlignFromCommonStart(series []Series) (*Frame, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("align: %w: no series", ErrInsufficientData)
	}

	lookup := make([]map[time.Time]float64, len(series))
	count := map[time.Time]int{}
	for i, s := range series {
		if len(s.Dates) != len(s.Values) {
			return nil, fmt.Errorf("align: %s has %d dates and %d values", s.Symbol, len(s.Dates), len(s.Values))
		}
		m := make(map[time.Time]float64, len(s.Dates))
		for j, d := range s.Dates {
			v := s.Values[j]
			if math.IsNaN(v) {
				continue
			}
			day := Day(d)
			if _, dup := m[day]; !dup {
				count[day]++
			}
			m[day] = v
		}
		lookup[i] = m
	}

	union := make([]time.Time, 0, len(count))
	for d := range count {
		union = append(union, d)
	}
	sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })

	start := -1
	for i, d := range union {
		if count[d] == len(series) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoCommonDate
	}

	dates := union[start:]
	frame := &Frame{
		Dates:   dates,
		Symbols: make([]string, len(series)),
		Columns: make([][]float64, len(series)),
	}
	for i, s := range series {
		col := make([]float64, len(dates))
		last := math.NaN()
		for j, d := range dates {
			if v, ok := lookup[i][d]; ok {
				last = v
			}
			col[j] = last
		}
		frame.Symbols[i] = s.Symbol
		frame.Columns[i] = col
	}
	return frame, nil
}

// UnionDates puts series on the union of their dates. Inside each series' own first to
// last date, missing days carry the previous value; outside it the value is NaN.
func UnionDates(series []Series) ([]time.Time, [][]float64) {
	maps := make([]map[time.Time]float64, len(series))
	all := map[time.Time]bool{}
	for i, s := range series {
		m := make(map[time.Time]float64, len(s.Dates))
		for j, d := range s.Dates {
			if j >= len(s.Values) || math.IsNaN(s.Values[j]) {
				continue
			}
			day := Day(d)
			m[day] = s.Values[j]
			all[day] = true
		}
		maps[i] = m
	}
	dates := make([]time.Time, 0, len(all))
	for d := range all {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([][]float64, len(series))
	for i, m := range maps {
		col := make([]float64, len(dates))
		remaining := len(m)
		last := math.NaN()
		for j, d := range dates {
			if v, ok := m[d]; ok {
				last = v
				remaining--
			} else if remaining == 0 {
				last = math.NaN()
			}
			col[j] = last
		}
		values[i] = col
	}
	return dates, values
}
