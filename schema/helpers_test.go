package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatedResultRows(t *testing.T) {
	result := AggregatedResult{
		Year:    []ChannelRecord{{Period: "2023", Channel: "open", Value: 5}},
		Quarter: []ChannelRecord{{Period: "2023Q1", Channel: "open", Value: 5}},
		Month: []ChannelRecord{
			{Period: "2023-01", Channel: "open", Value: 3},
			{Period: "2023-02", Channel: "open", Value: 2},
		},
	}

	rows := result.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, MetricRow{Granularity: YearGranularity, Period: "2023", Channel: "open", Value: 5}, rows[0])
	assert.Equal(t, QuarterGranularity, rows[1].Granularity)
	assert.Equal(t, "2023-02", rows[3].Period)
}

func TestQuantileResultRows(t *testing.T) {
	result := QuantileResult{
		Month: []QuantileRecord{{Period: "2023-01", Values: [QuantileCount]float64{5, 0, 0, 0, 0}}},
	}

	rows := result.Rows()
	require.Len(t, rows, QuantileCount)
	assert.Equal(t, "min", rows[0].Channel)
	assert.Equal(t, 5.0, rows[0].Value)
	assert.Equal(t, "max", rows[4].Channel)
}

func TestHeatmapResultRows(t *testing.T) {
	result := HeatmapResult{
		MonthPeriod: "2023-06",
		Month:       []HeatmapSample{{Day: "Tue", Hour: 1, Value: 7}},
	}

	rows := result.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, MetricRow{Granularity: MonthGranularity, Period: "2023-06", Channel: "Tue 01", Value: 7}, rows[0])
}

func TestOverviewRowsNil(t *testing.T) {
	var o *Overview
	assert.Nil(t, o.Rows())

	o = &Overview{Stars: 10, Forks: 2, Commits: 300}
	rows := o.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 300.0, rows[2].Value)
}

func TestFilterGranularity(t *testing.T) {
	result := AggregatedResult{
		Year:  []ChannelRecord{{Period: "2023", Channel: "open", Value: 1}},
		Month: []ChannelRecord{{Period: "2023-01", Channel: "open", Value: 1}},
	}

	filtered, ok := FilterGranularity(result, MonthGranularity).(AggregatedResult)
	require.True(t, ok)
	assert.Empty(t, filtered.Year)
	assert.NotNil(t, filtered.Quarter)
	assert.Len(t, filtered.Month, 1)

	all, ok := FilterGranularity(result, AllGranularity).(AggregatedResult)
	require.True(t, ok)
	assert.Len(t, all.Year, 1)

	activity := ActivityResult{Period: "2023-01"}
	assert.Equal(t, activity, FilterGranularity(activity, YearGranularity))
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, "insight.issue.statistics", IssueStatisticsGroup.QueryKey())
	assert.Equal(t, "insight.overview", OverviewGroup.QueryKey())
	assert.Len(t, AllMetricGroups, 8)
}
