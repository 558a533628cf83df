package renderer

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
)

// Marker symbol sizes for the smallest and largest buy of the history.
const (
	minMarkerSize = 6
	maxMarkerSize = 28
)

// WriteProfitChart renders the aggregate profitability series as an HTML
// line chart, overlaid with one marker per buy event. Marker size scales
// with the buy amount's share of the total invested, so the chart shows at a
// glance which purchases moved the portfolio.
//
// Buys on days outside the series (gaps, offset) are not marked.
func WriteProfitChart(w io.Writer, points []tinvest.ProfitPoint, ops []tinvest.Operation) error {
	percentByDay := make(map[date.Date]float64, len(points))
	days := make([]string, 0, len(points))
	lineData := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		percentByDay[p.On] = float64(p.Percent)
		days = append(days, p.On.String())
		lineData = append(lineData, opts.LineData{Value: float64(p.Percent)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Portfolio profitability",
			Subtitle: "mark-to-market profit relative to invested amount, with buys",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(days).AddSeries("profit", lineData)

	scatterData := buyMarkers(percentByDay, ops)
	if len(scatterData) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(days).AddSeries("buys", scatterData)
		line.Overlap(scatter)
	}
	return line.Render(w)
}

// buyMarkers builds one scatter point per buy that falls on a charted day.
func buyMarkers(percentByDay map[date.Date]float64, ops []tinvest.Operation) []opts.ScatterData {
	var total float64
	for _, op := range ops {
		if op.Kind == tinvest.Buy {
			total += op.TotalAmount.AsFloat()
		}
	}
	if total == 0 {
		return nil
	}

	var data []opts.ScatterData
	for _, op := range ops {
		if op.Kind != tinvest.Buy {
			continue
		}
		percent, ok := percentByDay[op.On()]
		if !ok {
			continue
		}
		share := op.TotalAmount.AsFloat() / total
		size := minMarkerSize + share*(maxMarkerSize-minMarkerSize)
		data = append(data, opts.ScatterData{
			Value:      []any{op.On().String(), percent},
			Symbol:     "circle",
			SymbolSize: int(size),
		})
	}
	return data
}
