package agg

import (
	"slices"

	"github.com/huangsam/gitinsight/core/period"
	"github.com/huangsam/gitinsight/schema"
	"github.com/samber/lo"
)

// ReconstructQuantiles rebuilds a five-slot array for every period found in any
// quantile series. A slot whose series lacks the period holds 0.
func ReconstructQuantiles(set schema.QuantileSet) schema.QuantileResult {
	var lookups [schema.QuantileCount]map[string]float64
	var keys []string
	for i, series := range set {
		lookups[i] = make(map[string]float64, len(series))
		for _, p := range series {
			lookups[i][p.Key] = p.Value
			keys = append(keys, p.Key)
		}
	}

	result := schema.EmptyQuantileResult()
	for _, key := range lo.Uniq(keys) {
		var values [schema.QuantileCount]float64
		for i, lookup := range lookups {
			values[i] = lookup[key]
		}
		rec := schema.QuantileRecord{Period: key, Values: values}
		switch period.Classify(key) {
		case schema.YearGranularity:
			result.Year = append(result.Year, rec)
		case schema.QuarterGranularity:
			result.Quarter = append(result.Quarter, rec)
		case schema.MonthGranularity:
			result.Month = append(result.Month, rec)
		}
	}

	byPeriod := func(a, b schema.QuantileRecord) int { return period.Compare(a.Period, b.Period) }
	slices.SortFunc(result.Year, byPeriod)
	slices.SortFunc(result.Quarter, byPeriod)
	slices.SortFunc(result.Month, byPeriod)
	return result
}
