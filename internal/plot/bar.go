package plot

import (
	"bytes"
	"errors"
	"math"

	"github.com/vicanso/go-charts/v2"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// renderBars draws non-negative values as a go-charts bar chart.
func renderBars(title, subtitle string, labels []string, values []float64, opt Options) ([]byte, error) {
	if len(values) == 0 {
		return nil, errors.New("no values")
	}
	clean := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		clean[i] = v
	}
	zero := 0.0
	w, h := opt.size()
	painter, err := charts.BarRender(
		[][]float64{clean},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisDataOptionFunc(labels),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &zero, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(w),
		charts.HeightOptionFunc(h),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// renderSignedBars draws values that may be negative, anchored at zero. NaN values
// are drawn as empty bars.
func renderSignedBars(title string, labels []string, values []float64, color drawing.Color, opt Options) ([]byte, error) {
	if len(values) == 0 {
		return nil, errors.New("no values")
	}
	mn, mx := 0.0, 0.0
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
		bars[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}
	if mn == mx {
		mx = 1
	}
	pad := (mx - mn) * 0.05
	w, h := opt.size()
	bc := chart.BarChart{
		Title:        title,
		Width:        w,
		Height:       h,
		Background:   chart.Style{Padding: chart.Box{Top: 40}},
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        chart.Style{TextRotationDegrees: 90},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: mn - pad, Max: mx + pad},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
