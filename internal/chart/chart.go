// Package chart renders the response model and single runs as standalone
// HTML charts.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/psjostrom/springa/internal/model"
)

// ModelBars renders the model's average drop rate per start-level band and
// per entry-slope bucket as grouped bars.
func ModelBars(m *model.BGResponseModel) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Glucose response by starting level",
			Subtitle: fmt.Sprintf("%d activities analyzed", m.ActivitiesAnalyzed),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "mmol/L per 10 min",
			NameLocation: "middle",
			NameGap:      40,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	labels := make([]string, 0, len(m.ByStartLevel))
	avg := make([]opts.BarData, 0, len(m.ByStartLevel))
	median := make([]opts.BarData, 0, len(m.ByStartLevel))
	for _, b := range m.ByStartLevel {
		labels = append(labels, b.Bucket+" mmol/L")
		avg = append(avg, opts.BarData{Value: b.AvgRate})
		median = append(median, opts.BarData{Value: b.MedianRate})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("avg rate", avg)
	bar.AddSeries("median rate", median)
	return bar
}

// RunLine renders one run's glucose and HR series over elapsed minutes.
func RunLine(ev model.CompletedEvent) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s run %s", ev.Category, ev.Start.Format("2006-01-02")),
			Subtitle: fmt.Sprintf("fuel %.0f g/h", ev.FuelRate),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "minutes",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	line.SetXAxis(minuteLabels(ev.Glucose))
	line.AddSeries("glucose (mmol/L)", lineItems(ev.Glucose))
	if len(ev.HR) > 0 {
		line.AddSeries("HR (bpm)", lineItems(ev.HR))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// RenderModel writes the model chart page.
func RenderModel(w io.Writer, m *model.BGResponseModel) error {
	if err := ModelBars(m).Render(w); err != nil {
		return fmt.Errorf("rendering model chart: %w", err)
	}
	return nil
}

// RenderRun writes the single-run chart page.
func RenderRun(w io.Writer, ev model.CompletedEvent) error {
	if err := RunLine(ev).Render(w); err != nil {
		return fmt.Errorf("rendering run chart: %w", err)
	}
	return nil
}

func minuteLabels(samples []model.TimeSample) []string {
	labels := make([]string, 0, len(samples))
	for _, s := range samples {
		labels = append(labels, fmt.Sprintf("%d", s.Offset/60))
	}
	return labels
}

func lineItems(samples []model.TimeSample) []opts.LineData {
	items := make([]opts.LineData, 0, len(samples))
	for _, s := range samples {
		items = append(items, opts.LineData{Value: s.Value})
	}
	return items
}
