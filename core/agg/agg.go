// Package agg re-buckets date-keyed metric series into year, quarter and month periods.
package agg

import (
	"cmp"
	"slices"

	"github.com/huangsam/gitinsight/core/period"
	"github.com/huangsam/gitinsight/schema"
)

// bucketKey identifies one period at one granularity.
type bucketKey struct {
	granularity schema.Granularity
	period      string
}

// arena accumulates channel sums per bucket. Missing entries start at zero.
type arena map[bucketKey]map[string]float64

// add sums value into the channel of a bucket.
func (a arena) add(key bucketKey, channel string, value float64) {
	channels, ok := a[key]
	if !ok {
		channels = make(map[string]float64)
		a[key] = channels
	}
	channels[channel] += value
}

// Aggregate merges every channel's month points into year, quarter and month buckets.
// Keys that are not well-formed months are skipped without error.
func Aggregate(inputs []schema.ChannelSeries) schema.AggregatedResult {
	ranks := channelRanks(inputs)
	sums := make(arena)

	for _, in := range inputs {
		for _, p := range in.Series {
			year, month, ok := period.SplitMonth(p.Key)
			if !ok {
				continue
			}
			sums.add(bucketKey{schema.YearGranularity, year}, in.Channel, p.Value)
			sums.add(bucketKey{schema.QuarterGranularity, period.MonthToQuarter(year, month)}, in.Channel, p.Value)
			sums.add(bucketKey{schema.MonthGranularity, p.Key}, in.Channel, p.Value)
		}
	}

	result := schema.EmptyAggregatedResult()
	for key, channels := range sums {
		for channel, value := range channels {
			rec := schema.ChannelRecord{Period: key.period, Channel: channel, Value: value}
			switch key.granularity {
			case schema.YearGranularity:
				result.Year = append(result.Year, rec)
			case schema.QuarterGranularity:
				result.Quarter = append(result.Quarter, rec)
			case schema.MonthGranularity:
				result.Month = append(result.Month, rec)
			}
		}
	}

	sortChannelRecords(result.Year, ranks)
	sortChannelRecords(result.Quarter, ranks)
	sortChannelRecords(result.Month, ranks)
	return result
}

// NegateChannel returns a copy of result with every value of channel negated.
func NegateChannel(result schema.AggregatedResult, channel string) schema.AggregatedResult {
	negate := func(recs []schema.ChannelRecord) []schema.ChannelRecord {
		out := slices.Clone(recs)
		for i := range out {
			if out[i].Channel == channel {
				out[i].Value = -out[i].Value
			}
		}
		return out
	}
	return schema.AggregatedResult{
		Year:    negate(result.Year),
		Quarter: negate(result.Quarter),
		Month:   negate(result.Month),
	}
}

// channelRanks maps each channel to the position it first appears at.
func channelRanks(inputs []schema.ChannelSeries) map[string]int {
	ranks := make(map[string]int, len(inputs))
	for _, in := range inputs {
		if _, ok := ranks[in.Channel]; !ok {
			ranks[in.Channel] = len(ranks)
		}
	}
	return ranks
}

// sortChannelRecords orders by period tuple, then by channel declaration order.
func sortChannelRecords(recs []schema.ChannelRecord, ranks map[string]int) {
	slices.SortFunc(recs, func(a, b schema.ChannelRecord) int {
		if c := period.Compare(a.Period, b.Period); c != 0 {
			return c
		}
		return cmp.Compare(ranks[a.Channel], ranks[b.Channel])
	})
}
