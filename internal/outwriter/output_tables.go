package outwriter

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"
)

// granularityTitles are the section titles of each calendar granularity.
var granularityTitles = map[schema.Granularity]string{
	schema.YearGranularity:    "Yearly",
	schema.QuarterGranularity: "Quarterly",
	schema.MonthGranularity:   "Monthly",
}

// quantileHeaders label the five quantile slots.
var quantileHeaders = []string{"Period", "Min", "Q1", "Median", "Q3", "Max"}

// writeGroupTable generates and writes the human-readable tables of one result.
func writeGroupTable(w io.Writer, group schema.MetricGroup, result schema.Tabular, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	var err error
	switch r := result.(type) {
	case schema.AggregatedResult:
		err = writeAggregatedTables(w, group, r, cfg, fmtFloat)
	case schema.QuantileResult:
		err = writeQuantileTables(w, r, cfg, fmtFloat)
	case schema.SeriesResult:
		err = writeSeriesTables(w, r, cfg, fmtFloat)
	case schema.HeatmapResult:
		err = writeHeatmapTables(w, r, cfg, fmtFloat)
	case schema.ActivityResult:
		err = writeActivityTable(w, r, cfg, fmtFloat)
	case *schema.Overview:
		err = writeOverviewTable(w, r)
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Fetched %s in %v with %d workers. Cache backend: %s\n", group.QueryKey(), duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeAggregatedTables pivots each granularity into one row per period and one column per channel.
func writeAggregatedTables(w io.Writer, group schema.MetricGroup, r schema.AggregatedResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	sections := []struct {
		g    schema.Granularity
		recs []schema.ChannelRecord
	}{{schema.YearGranularity, r.Year}, {schema.QuarterGranularity, r.Quarter}, {schema.MonthGranularity, r.Month}}

	written := false
	for _, s := range sections {
		if len(s.recs) == 0 {
			continue
		}
		written = true
		periods := lo.Uniq(lo.Map(s.recs, func(rec schema.ChannelRecord, _ int) string { return rec.Period }))
		channels := lo.Uniq(lo.Map(s.recs, func(rec schema.ChannelRecord, _ int) string { return rec.Channel }))
		cells := make(map[string]map[string]float64, len(periods))
		for _, rec := range s.recs {
			if cells[rec.Period] == nil {
				cells[rec.Period] = make(map[string]float64, len(channels))
			}
			cells[rec.Period][rec.Channel] = rec.Value
		}

		shown := latest(periods, cfg.ResultLimit)
		headers := append([]string{"Period"}, lo.Map(channels, func(c string, _ int) string { return channelLabel(c, cfg) })...)
		var data [][]string
		for _, p := range shown {
			row := []string{p}
			for _, c := range channels {
				v, ok := cells[p][c]
				if !ok {
					row = append(row, "-")
					continue
				}
				text := fmtFloat(v)
				if cfg.UseColors && group == schema.CodeFrequencyGroup {
					text = contract.ColorizeValue(v, text)
				}
				row = append(row, text)
			}
			data = append(data, row)
		}

		if err := writeSectionTitle(w, sectionTitle(s.g, len(shown), len(periods)), cfg); err != nil {
			return err
		}
		if err := renderTable(w, headers, data); err != nil {
			return err
		}
	}
	if !written {
		return writeNoData(w)
	}
	return nil
}

// writeQuantileTables prints the five quantiles of each period.
func writeQuantileTables(w io.Writer, r schema.QuantileResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	sections := []struct {
		g    schema.Granularity
		recs []schema.QuantileRecord
	}{{schema.YearGranularity, r.Year}, {schema.QuarterGranularity, r.Quarter}, {schema.MonthGranularity, r.Month}}

	written := false
	for _, s := range sections {
		if len(s.recs) == 0 {
			continue
		}
		written = true
		shown := latest(s.recs, cfg.ResultLimit)
		data := lo.Map(shown, func(rec schema.QuantileRecord, _ int) []string {
			row := []string{rec.Period}
			for _, v := range rec.Values {
				row = append(row, fmtFloat(v))
			}
			return row
		})
		if err := writeSectionTitle(w, sectionTitle(s.g, len(shown), len(s.recs)), cfg); err != nil {
			return err
		}
		if err := renderTable(w, quantileHeaders, data); err != nil {
			return err
		}
	}
	if !written {
		return writeNoData(w)
	}
	return nil
}

// writeSeriesTables prints the single value of each period.
func writeSeriesTables(w io.Writer, r schema.SeriesResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	sections := []struct {
		g    schema.Granularity
		recs []schema.SeriesRecord
	}{{schema.YearGranularity, r.Year}, {schema.QuarterGranularity, r.Quarter}, {schema.MonthGranularity, r.Month}}

	written := false
	for _, s := range sections {
		if len(s.recs) == 0 {
			continue
		}
		written = true
		shown := latest(s.recs, cfg.ResultLimit)
		data := lo.Map(shown, func(rec schema.SeriesRecord, _ int) []string {
			return []string{rec.Period, fmtFloat(rec.Value)}
		})
		if err := writeSectionTitle(w, sectionTitle(s.g, len(shown), len(s.recs)), cfg); err != nil {
			return err
		}
		if err := renderTable(w, []string{"Period", "Contributors"}, data); err != nil {
			return err
		}
	}
	if !written {
		return writeNoData(w)
	}
	return nil
}

// writeHeatmapTables prints one weekday by hour grid per granularity.
// Narrow terminals get blocks of hours instead of single hours.
func writeHeatmapTables(w io.Writer, r schema.HeatmapResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	block := 1
	if useCompactHeatmap(cfg) {
		block = hoursPerBlock
	}

	sections := []struct {
		g       schema.Granularity
		period  string
		samples []schema.HeatmapSample
	}{
		{schema.YearGranularity, r.YearPeriod, r.Year},
		{schema.QuarterGranularity, r.QuarterPeriod, r.Quarter},
		{schema.MonthGranularity, r.MonthPeriod, r.Month},
	}

	written := false
	for _, s := range sections {
		if len(s.samples) == 0 {
			continue
		}
		written = true
		headers, data := heatmapGrid(s.samples, block, fmtFloat)
		title := fmt.Sprintf("%s (%s)", granularityTitles[s.g], s.period)
		if err := writeSectionTitle(w, title, cfg); err != nil {
			return err
		}
		if err := renderTable(w, headers, data); err != nil {
			return err
		}
	}
	if !written {
		return writeNoData(w)
	}
	return nil
}

// heatmapGrid sums samples into weekday rows and hour-block columns.
func heatmapGrid(samples []schema.HeatmapSample, block int, fmtFloat func(float64) string) ([]string, [][]string) {
	cols := schema.HoursPerDay / block
	headers := []string{"Day"}
	for c := range cols {
		if block == 1 {
			headers = append(headers, fmt.Sprintf("%02d", c))
		} else {
			headers = append(headers, fmt.Sprintf("%02d-%02d", c*block, (c+1)*block-1))
		}
	}

	var grid [len(schema.Weekdays)][]float64
	lastDay := -1
	for _, s := range samples {
		day := slices.Index(schema.Weekdays[:], s.Day)
		if day < 0 || s.Hour < 0 || s.Hour >= schema.HoursPerDay {
			continue
		}
		if grid[day] == nil {
			grid[day] = make([]float64, cols)
		}
		grid[day][s.Hour/block] += s.Value
		lastDay = max(lastDay, day)
	}

	var data [][]string
	for day := 0; day <= lastDay; day++ {
		row := []string{schema.Weekdays[day]}
		if grid[day] == nil {
			grid[day] = make([]float64, cols)
		}
		for _, v := range grid[day] {
			row = append(row, fmtFloat(v))
		}
		data = append(data, row)
	}
	return headers, data
}

// writeActivityTable prints the top users of the latest month.
func writeActivityTable(w io.Writer, r schema.ActivityResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(r.Details) == 0 {
		return writeNoData(w)
	}
	shown := r.Details[:min(len(r.Details), cfg.ResultLimit)]
	data := lo.Map(shown, func(d schema.ActivityDetail, i int) []string {
		return []string{strconv.Itoa(i + 1), contract.TruncateLabel(d.User, maxUserWidth), fmtFloat(d.Value)}
	})
	title := fmt.Sprintf("Activity in %s (top %d of %d users)", r.Period, len(shown), len(r.Details))
	if err := writeSectionTitle(w, title, cfg); err != nil {
		return err
	}
	return renderTable(w, []string{"Rank", "User", "Activity"}, data)
}

// writeOverviewTable prints the repository counters.
func writeOverviewTable(w io.Writer, o *schema.Overview) error {
	if o == nil {
		_, err := fmt.Fprintln(w, "No overview available.")
		return err
	}
	data := [][]string{
		{"Stars", strconv.Itoa(o.Stars)},
		{"Forks", strconv.Itoa(o.Forks)},
		{"Commits", strconv.Itoa(o.Commits)},
	}
	return renderTable(w, []string{"Metric", "Value"}, data)
}

// renderTable writes a right-aligned table.
func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSectionTitle prints a title line above a table.
func writeSectionTitle(w io.Writer, title string, cfg *contract.Config) error {
	if cfg.UseColors {
		title = contract.HeaderColor.Sprint(title)
	}
	_, err := fmt.Fprintln(w, title)
	return err
}

// writeNoData reports an empty result.
func writeNoData(w io.Writer) error {
	_, err := fmt.Fprintln(w, "No data available.")
	return err
}

// sectionTitle names a granularity and notes when older periods were cut.
func sectionTitle(g schema.Granularity, shown, total int) string {
	if shown < total {
		return fmt.Sprintf("%s (latest %d of %d periods)", granularityTitles[g], shown, total)
	}
	return granularityTitles[g]
}

// channelLabel colors a channel name when colors are enabled.
func channelLabel(channel string, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.HeaderColor.Sprint(channel)
	}
	return channel
}

// latest keeps the last limit items of an ascending sequence.
func latest[T any](items []T, limit int) []T {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[len(items)-limit:]
}
