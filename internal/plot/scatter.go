package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Point is one labelled scatter point; highlighted points are drawn larger in red.
type Point struct {
	Label     string
	X, Y      float64
	Highlight bool
}

func renderScatter(title, xName, yName string, points []Point, opt Options) ([]byte, error) {
	var xs, ys, hx, hy []float64
	var notes []chart.Value2
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		if p.Highlight {
			hx, hy = append(hx, p.X), append(hy, p.Y)
		} else {
			xs, ys = append(xs, p.X), append(ys, p.Y)
		}
		notes = append(notes, chart.Value2{Label: p.Label, XValue: p.X, YValue: p.Y})
	}
	if len(notes) == 0 {
		return nil, errors.New("no finite points")
	}
	xr := paddedRange(append(append([]float64{}, xs...), hx...))
	yr := paddedRange(append(append([]float64{}, ys...), hy...))

	series := []chart.Series{}
	if len(xs) > 0 {
		series = append(series, chart.ContinuousSeries{
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: drawing.ColorBlue},
			XValues: xs,
			YValues: ys,
		})
	}
	if len(hx) > 0 {
		series = append(series, chart.ContinuousSeries{
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 9, DotColor: drawing.ColorRed},
			XValues: hx,
			YValues: hy,
		})
	}
	series = append(series, chart.AnnotationSeries{Annotations: notes})

	w, h := opt.size()
	graph := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20}},
		XAxis: chart.XAxis{
			Name:           xName,
			Range:          xr,
			ValueFormatter: decimalFormatter,
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Range:          yr,
			ValueFormatter: decimalFormatter,
		},
		Series: series,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func paddedRange(values []float64) *chart.ContinuousRange {
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}
	pad := (mx - mn) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(mx)*0.1, 0.01)
	}
	return &chart.ContinuousRange{Min: mn - pad, Max: mx + pad}
}

func decimalFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.3f", f)
	}
	return fmt.Sprint(v)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
