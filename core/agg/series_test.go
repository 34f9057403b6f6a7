package agg

import (
	"testing"

	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
)

func TestBucketSeries(t *testing.T) {
	series := seriesOf(
		"2023-02", 4,
		"2023", 12,
		"2022", 9,
		"2023Q1", 7,
		"2023-01", 3,
		"2021-10-raw", 100,
	)

	result := BucketSeries(series)

	assert.Equal(t, []schema.SeriesRecord{{Period: "2022", Value: 9}, {Period: "2023", Value: 12}}, result.Year)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023Q1", Value: 7}}, result.Quarter)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023-01", Value: 3}, {Period: "2023-02", Value: 4}}, result.Month)
}

func TestLatestActivity(t *testing.T) {
	series := schema.ActivitySeries{
		{Key: "2023-09", Entries: []schema.ActivityDetail{{User: "old", Value: 1}}},
		{Key: "2023-11", Entries: []schema.ActivityDetail{{User: "alice", Value: 12.5}, {User: "bob", Value: 3}}},
		{Key: "2023", Entries: []schema.ActivityDetail{{User: "yearly", Value: 99}}},
		{Key: "2023-10", Entries: []schema.ActivityDetail{{User: "mid", Value: 2}}},
	}

	result := LatestActivity(series)

	assert.Equal(t, "2023-11", result.Period)
	assert.Equal(t, []schema.ActivityDetail{{User: "alice", Value: 12.5}, {User: "bob", Value: 3}}, result.Details)
}

func TestLatestActivityWithoutMonths(t *testing.T) {
	result := LatestActivity(schema.ActivitySeries{{Key: "2023"}})
	assert.Equal(t, schema.EmptyActivityResult(), result)
}
