package plot

import (
	"errors"
	"fmt"

	"github.com/vicanso/go-charts/v2"
)

func renderPie(title string, labels []string, values []float64, opt Options) ([]byte, error) {
	if len(values) == 0 {
		return nil, errors.New("no values")
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	pieLabels := make([]string, len(labels))
	for i, l := range labels {
		pieLabels[i] = fmt.Sprintf("%s (%.1f%%)", l, values[i]/total*100)
	}
	w, h := opt.size()
	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: pieLabels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(w),
		charts.HeightOptionFunc(h),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}
