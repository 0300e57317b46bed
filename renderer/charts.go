package renderer

import (
	"errors"
	"fmt"

	"github.com/etnz/portfoy"
	"github.com/vicanso/go-charts/v2"
)

const (
	chartWidth  = 800
	chartHeight = 600
)

// AllocationChart renders the groups as a pie chart PNG.
func AllocationChart(g *Groups) ([]byte, error) {
	var values []float64
	var labels []string
	for _, group := range g.Groups {
		if !group.Value.IsPositive() {
			continue
		}
		values = append(values, group.Value.Float64())
		labels = append(labels, group.Key)
	}
	if len(values) == 0 {
		return nil, errors.New("nothing to chart")
	}
	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("%s by %s", g.Profile, g.Dimension), g.Total.String()),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// HistoryChart renders the history in cur as a line chart PNG.
func HistoryChart(h *History, cur portfoy.Currency) ([]byte, error) {
	if len(h.Entries) < 2 {
		return nil, errors.New("not enough data points")
	}
	xLabels := make([]string, 0, len(h.Entries))
	values := make([]float64, 0, len(h.Entries))
	for _, e := range h.Entries {
		xLabels = append(xLabels, e.Date.Format("02 Jan 06"))
		if cur == portfoy.USD {
			values = append(values, e.USD.Float64())
		} else {
			values = append(values, e.TRY.Float64())
		}
	}

	// Y-axis range with padding
	yMin, yMax := values[0], values[0]
	for _, v := range values {
		yMin, yMax = min(yMin, v), max(yMax, v)
	}
	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = yMax * 0.05
	}
	yMin, yMax = max(0, yMin-padding), yMax+padding

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = max(3, len(xLabels)/3)
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(fmt.Sprintf("%s history (%s)", h.Profile, cur)),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
