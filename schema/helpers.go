package schema

import "fmt"

// MetricRow is the flat form shared by CSV, Parquet and run history.
type MetricRow struct {
	Granularity Granularity `json:"granularity"`
	Period      string      `json:"period"`
	Channel     string      `json:"channel"`
	Value       float64     `json:"value"`
}

// Tabular is implemented by every metric group result.
type Tabular interface {
	Rows() []MetricRow
}

// QuantileChannels names the five quantile slots when results are flattened.
var QuantileChannels = [QuantileCount]string{"min", "q1", "median", "q3", "max"}

// Rows flattens the result granularity by granularity.
func (r AggregatedResult) Rows() []MetricRow {
	rows := make([]MetricRow, 0, len(r.Year)+len(r.Quarter)+len(r.Month))
	for _, part := range []struct {
		g    Granularity
		recs []ChannelRecord
	}{{YearGranularity, r.Year}, {QuarterGranularity, r.Quarter}, {MonthGranularity, r.Month}} {
		for _, rec := range part.recs {
			rows = append(rows, MetricRow{Granularity: part.g, Period: rec.Period, Channel: rec.Channel, Value: rec.Value})
		}
	}
	return rows
}

// Rows flattens each quantile array into five rows.
func (r QuantileResult) Rows() []MetricRow {
	var rows []MetricRow
	for _, part := range []struct {
		g    Granularity
		recs []QuantileRecord
	}{{YearGranularity, r.Year}, {QuarterGranularity, r.Quarter}, {MonthGranularity, r.Month}} {
		for _, rec := range part.recs {
			for i, v := range rec.Values {
				rows = append(rows, MetricRow{Granularity: part.g, Period: rec.Period, Channel: QuantileChannels[i], Value: v})
			}
		}
	}
	return rows
}

// Rows flattens the samples, labelling each with its weekday and hour.
func (r HeatmapResult) Rows() []MetricRow {
	var rows []MetricRow
	for _, part := range []struct {
		g       Granularity
		period  string
		samples []HeatmapSample
	}{{YearGranularity, r.YearPeriod, r.Year}, {QuarterGranularity, r.QuarterPeriod, r.Quarter}, {MonthGranularity, r.MonthPeriod, r.Month}} {
		for _, s := range part.samples {
			rows = append(rows, MetricRow{Granularity: part.g, Period: part.period, Channel: HeatmapSlotLabel(s.Day, s.Hour), Value: s.Value})
		}
	}
	return rows
}

// Rows flattens the series using "value" as the channel.
func (r SeriesResult) Rows() []MetricRow {
	rows := make([]MetricRow, 0, len(r.Year)+len(r.Quarter)+len(r.Month))
	for _, part := range []struct {
		g    Granularity
		recs []SeriesRecord
	}{{YearGranularity, r.Year}, {QuarterGranularity, r.Quarter}, {MonthGranularity, r.Month}} {
		for _, rec := range part.recs {
			rows = append(rows, MetricRow{Granularity: part.g, Period: rec.Period, Channel: "value", Value: rec.Value})
		}
	}
	return rows
}

// Rows uses the user name as the channel.
func (r ActivityResult) Rows() []MetricRow {
	rows := make([]MetricRow, 0, len(r.Details))
	for _, d := range r.Details {
		rows = append(rows, MetricRow{Granularity: MonthGranularity, Period: r.Period, Channel: d.User, Value: d.Value})
	}
	return rows
}

// Rows returns nothing for a missing overview.
func (o *Overview) Rows() []MetricRow {
	if o == nil {
		return nil
	}
	return []MetricRow{
		{Granularity: SnapshotGranularity, Channel: "stars", Value: float64(o.Stars)},
		{Granularity: SnapshotGranularity, Channel: "forks", Value: float64(o.Forks)},
		{Granularity: SnapshotGranularity, Channel: "commits", Value: float64(o.Commits)},
	}
}

// HeatmapSlotLabel formats a weekday and hour as "Mon 09".
func HeatmapSlotLabel(day string, hour int) string {
	return fmt.Sprintf("%s %02d", day, hour)
}

// FilterGranularity narrows a result to one granularity. Results without
// calendar granularities are returned unchanged.
func FilterGranularity(result Tabular, g Granularity) Tabular {
	switch r := result.(type) {
	case AggregatedResult:
		return r.Only(g)
	case QuantileResult:
		return r.Only(g)
	case HeatmapResult:
		return r.Only(g)
	case SeriesResult:
		return r.Only(g)
	default:
		return result
	}
}
