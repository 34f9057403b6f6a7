package agg

import (
	"github.com/huangsam/gitinsight/core/period"
	"github.com/huangsam/gitinsight/schema"
)

// ReshapeLatest picks the most recent snapshot of each granularity and reshapes it
// into day and hour samples. A granularity without snapshots yields no samples.
func ReshapeLatest(raw schema.HeatmapSeries) schema.HeatmapResult {
	latest := make(map[schema.Granularity]schema.HeatmapSnapshot, 3)
	for _, snap := range raw {
		g := period.Classify(snap.Key)
		if g == schema.OtherGranularity {
			continue
		}
		// Keys of one granularity share a fixed width, so string order is time order.
		if cur, ok := latest[g]; !ok || snap.Key > cur.Key {
			latest[g] = snap
		}
	}

	result := schema.EmptyHeatmapResult()
	if snap, ok := latest[schema.YearGranularity]; ok {
		result.YearPeriod, result.Year = snap.Key, Reshape(snap.Values)
	}
	if snap, ok := latest[schema.QuarterGranularity]; ok {
		result.QuarterPeriod, result.Quarter = snap.Key, Reshape(snap.Values)
	}
	if snap, ok := latest[schema.MonthGranularity]; ok {
		result.MonthPeriod, result.Month = snap.Key, Reshape(snap.Values)
	}
	return result
}

// Reshape maps slot i to weekday i/24 and hour i%24.
// Slots past the last weekday are ignored.
func Reshape(values []float64) []schema.HeatmapSample {
	n := min(len(values), schema.HeatmapSlots)
	samples := make([]schema.HeatmapSample, 0, n)
	for i := range n {
		samples = append(samples, schema.HeatmapSample{
			Day:   schema.Weekdays[i/schema.HoursPerDay],
			Hour:  i % schema.HoursPerDay,
			Value: values[i],
		})
	}
	return samples
}
