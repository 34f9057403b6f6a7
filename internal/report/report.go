// Package report renders every metric group of a repository as an HTML chart page.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/gitinsight/schema"
	"github.com/samber/lo"
)

// Chart layout.
const (
	chartWidth  = "1100px"
	chartHeight = "420px"
	maxUsers    = 20
)

// heatColors is the visual map gradient, cold to hot.
var heatColors = []string{"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"}

// DefaultFileName returns the report file name of repo, e.g. gitinsight-octo-widgets.html.
func DefaultFileName(repo string) string {
	return fmt.Sprintf("gitinsight-%s.html", strings.ReplaceAll(repo, "/", "-"))
}

// WriteFile renders bundle into the file at path.
func WriteFile(bundle schema.InsightBundle, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return Render(file, bundle)
}

// Render writes the chart page of bundle to w.
func Render(w io.Writer, bundle schema.InsightBundle) error {
	page := components.NewPage()
	page.PageTitle = "gitinsight: " + bundle.Repo
	page.AddCharts(
		channelBar("Issues", overviewSubtitle(bundle.Overview), bundle.Issues.Month),
		resolutionBoxPlot(bundle.Resolution.Month),
		channelBar("Pull Requests", "", bundle.PRs.Month),
		channelBar("Code Frequency", "Lines added and removed", bundle.CodeFrequency.Month),
		contributorsLine(bundle.Contributors.Month),
		activityBar(bundle.Activity),
		activityHeatmap(bundle.Heatmap),
	)
	return page.Render(w)
}

// overviewSubtitle summarizes the repository counters, if known.
func overviewSubtitle(o *schema.Overview) string {
	if o == nil {
		return ""
	}
	return fmt.Sprintf("%d stars, %d forks, %d commits", o.Stars, o.Forks, o.Commits)
}

// baseOptions are shared by every chart.
func baseOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:  opts.Bool(true),
			Right: "10",
		}),
	}
}

// channelBar draws one bar series per channel over the monthly periods.
func channelBar(title, subtitle string, recs []schema.ChannelRecord) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(title, subtitle)...)

	periods := lo.Uniq(lo.Map(recs, func(r schema.ChannelRecord, _ int) string { return r.Period }))
	channels := lo.Uniq(lo.Map(recs, func(r schema.ChannelRecord, _ int) string { return r.Channel }))
	values := make(map[string]map[string]float64, len(channels))
	for _, r := range recs {
		if values[r.Channel] == nil {
			values[r.Channel] = make(map[string]float64, len(periods))
		}
		values[r.Channel][r.Period] = r.Value
	}

	bar.SetXAxis(periods)
	for _, c := range channels {
		data := lo.Map(periods, func(p string, _ int) opts.BarData {
			return opts.BarData{Value: values[c][p]}
		})
		bar.AddSeries(c, data)
	}
	return bar
}

// resolutionBoxPlot draws the monthly resolution quantiles as boxes.
func resolutionBoxPlot(recs []schema.QuantileRecord) *charts.BoxPlot {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(baseOptions("Issue Resolution Duration", "Quantiles in days")...)

	box.SetXAxis(lo.Map(recs, func(r schema.QuantileRecord, _ int) string { return r.Period }))
	box.AddSeries("duration", lo.Map(recs, func(r schema.QuantileRecord, _ int) opts.BoxPlotData {
		return opts.BoxPlotData{Value: r.Values[:]}
	}))
	return box
}

// contributorsLine draws the monthly contributor counts.
func contributorsLine(recs []schema.SeriesRecord) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(baseOptions("Contributors", "")...)

	line.SetXAxis(lo.Map(recs, func(r schema.SeriesRecord, _ int) string { return r.Period }))
	line.AddSeries("contributors", lo.Map(recs, func(r schema.SeriesRecord, _ int) opts.LineData {
		return opts.LineData{Value: r.Value}
	}))
	return line
}

// activityBar draws the most active users of the latest month.
func activityBar(a schema.ActivityResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("Most Active Users", a.Period)...)

	top := a.Details[:min(len(a.Details), maxUsers)]
	bar.SetXAxis(lo.Map(top, func(d schema.ActivityDetail, _ int) string { return d.User }))
	bar.AddSeries("activity", lo.Map(top, func(d schema.ActivityDetail, _ int) opts.BarData {
		return opts.BarData{Value: d.Value}
	}))
	return bar
}

// activityHeatmap draws the latest monthly weekday by hour activity.
// It falls back to the quarter and then the year when no month exists.
func activityHeatmap(h schema.HeatmapResult) *charts.HeatMap {
	period, samples := h.MonthPeriod, h.Month
	if len(samples) == 0 {
		period, samples = h.QuarterPeriod, h.Quarter
	}
	if len(samples) == 0 {
		period, samples = h.YearPeriod, h.Year
	}

	hours := make([]string, schema.HoursPerDay)
	for i := range hours {
		hours[i] = fmt.Sprintf("%02d", i)
	}

	maxValue := 1.0
	data := make([]opts.HeatMapData, 0, len(samples))
	for i, s := range samples {
		// Samples are day-major, so the index gives the weekday row.
		data = append(data, opts.HeatMapData{Value: [3]any{s.Hour, i / schema.HoursPerDay, s.Value}})
		maxValue = max(maxValue, s.Value)
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(baseOptions("Active Dates and Times", period)...)
	heatmap.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      hours,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      schema.Weekdays[:],
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxValue),
			InRange: &opts.VisualMapInRange{
				Color: heatColors,
			},
		}),
	)
	heatmap.SetXAxis(hours).AddSeries("activity", data)
	return heatmap
}
