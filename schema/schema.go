// Package schema has models and constants shared by all parts of gitinsight.
package schema

// SeriesPoint is one entry of a date-keyed metric document.
type SeriesPoint struct {
	Key   string
	Value float64
}

// RawSeries is a metric document decoded in document order.
// Keys never repeat because the source is itself a JSON object.
type RawSeries []SeriesPoint

// ChannelSeries pairs a raw series with the channel it contributes to.
// Several series may share one channel, in which case their values add up.
type ChannelSeries struct {
	Channel string
	Series  RawSeries
}

// QuantileSet holds the quantile_0 through quantile_4 series of a duration document.
type QuantileSet [QuantileCount]RawSeries

// HeatmapSnapshot is one period's flat day-major array of hourly samples.
type HeatmapSnapshot struct {
	Key    string
	Values []float64
}

// HeatmapSeries is an active-dates-and-times document in document order.
type HeatmapSeries []HeatmapSnapshot

// ActivitySnapshot is one period's list of per-user activity values.
type ActivitySnapshot struct {
	Key     string
	Entries []ActivityDetail
}

// ActivitySeries is an activity-details document in document order.
type ActivitySeries []ActivitySnapshot
