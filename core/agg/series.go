package agg

import (
	"slices"

	"github.com/huangsam/gitinsight/core/period"
	"github.com/huangsam/gitinsight/schema"
)

// BucketSeries sorts a series whose keys already span all granularities into
// year, quarter and month sequences. Values of repeated periods are summed.
func BucketSeries(series schema.RawSeries) schema.SeriesResult {
	sums := make(map[bucketKey]float64)
	for _, p := range series {
		g := period.Classify(p.Key)
		if g == schema.OtherGranularity {
			continue
		}
		sums[bucketKey{g, p.Key}] += p.Value
	}

	result := schema.EmptySeriesResult()
	for key, value := range sums {
		rec := schema.SeriesRecord{Period: key.period, Value: value}
		switch key.granularity {
		case schema.YearGranularity:
			result.Year = append(result.Year, rec)
		case schema.QuarterGranularity:
			result.Quarter = append(result.Quarter, rec)
		case schema.MonthGranularity:
			result.Month = append(result.Month, rec)
		}
	}

	byPeriod := func(a, b schema.SeriesRecord) int { return period.Compare(a.Period, b.Period) }
	slices.SortFunc(result.Year, byPeriod)
	slices.SortFunc(result.Quarter, byPeriod)
	slices.SortFunc(result.Month, byPeriod)
	return result
}

// LatestActivity returns the per-user details of the most recent month.
func LatestActivity(series schema.ActivitySeries) schema.ActivityResult {
	result := schema.EmptyActivityResult()
	found := false
	var latest schema.ActivitySnapshot
	for _, snap := range series {
		if period.Classify(snap.Key) != schema.MonthGranularity {
			continue
		}
		if !found || period.Compare(snap.Key, latest.Key) > 0 {
			latest, found = snap, true
		}
	}
	if !found {
		return result
	}

	result.Period = latest.Key
	result.Details = append(result.Details, latest.Entries...)
	return result
}
