package plot

import (
	"errors"
	"math"
	"time"

	"github.com/vicanso/go-charts/v2"
)

// maxLinePoints caps the points drawn per line; longer histories are sampled evenly.
const maxLinePoints = 400

type lineInput struct {
	title    string
	subtitle string
	dates    []time.Time
	names    []string
	values   [][]float64
	// gaps leaves NaN values as breaks in the line instead of carrying the last value.
	gaps bool
}

func renderLines(in lineInput, opt Options) ([]byte, error) {
	if len(in.dates) < 2 || len(in.values) == 0 {
		return nil, errors.New("not enough data points")
	}
	idx := sampleIndex(len(in.dates), maxLinePoints)

	labelFmt := "Jan '06"
	if in.dates[len(in.dates)-1].Sub(in.dates[0]) < 120*24*time.Hour {
		labelFmt = "Jan 02"
	}
	xLabels := make([]string, len(idx))
	for i, j := range idx {
		xLabels[i] = in.dates[j].Format(labelFmt)
	}

	values := make([][]float64, len(in.values))
	mn, mx := math.Inf(1), math.Inf(-1)
	for k, col := range in.values {
		values[k] = make([]float64, len(idx))
		last := math.NaN()
		for i, j := range idx {
			v := col[j]
			if in.gaps && !finite(v) {
				values[k][i] = charts.GetNullValue()
				continue
			}
			if !finite(v) {
				v = last
			}
			if math.IsNaN(v) {
				v = 0
			}
			values[k][i] = v
			last = v
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
		}
	}
	if math.IsInf(mn, 1) {
		return nil, errors.New("no finite values")
	}
	pad := (mx - mn) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(mx)*0.05, 1)
	}
	yMin, yMax := mn-pad, mx+pad

	split := 8
	if len(xLabels) < 24 {
		split = len(xLabels) / 3
		if split < 2 {
			split = 2
		}
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		if i < len(in.names) {
			seriesList[i].Name = in.names[i]
		}
	}
	w, h := opt.size()
	opts := []charts.OptionFunc{
		charts.TitleTextOptionFunc(in.title, in.subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(w),
		charts.HeightOptionFunc(h),
	}
	if len(in.names) > 1 {
		opts = append(opts, charts.LegendOptionFunc(charts.LegendOption{Data: in.names}))
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList, SymbolShow: charts.FalseFlag()}, opts...)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// sampleIndex picks at most limit evenly spaced indexes of [0,n), always keeping the last.
func sampleIndex(n, limit int) []int {
	if n <= limit {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, limit)
	step := float64(n-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		idx = append(idx, int(math.Round(float64(i)*step)))
	}
	idx[len(idx)-1] = n - 1
	return idx
}
