package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBundle() schema.InsightBundle {
	return schema.InsightBundle{
		Repo: "octo/widgets",
		Issues: schema.AggregatedResult{Month: []schema.ChannelRecord{
			{Period: "2023-01", Channel: "open", Value: 3},
			{Period: "2023-02", Channel: "open", Value: 2},
			{Period: "2023-02", Channel: "close", Value: 1},
		}},
		Resolution: schema.QuantileResult{Month: []schema.QuantileRecord{
			{Period: "2023-01", Values: [5]float64{1, 2, 3, 4, 5}},
		}},
		CodeFrequency: schema.AggregatedResult{Month: []schema.ChannelRecord{
			{Period: "2023-01", Channel: "add", Value: 100},
			{Period: "2023-01", Channel: "remove", Value: -40},
		}},
		Contributors: schema.SeriesResult{Month: []schema.SeriesRecord{{Period: "2023-01", Value: 8}}},
		Activity:     schema.ActivityResult{Period: "2023-02", Details: []schema.ActivityDetail{{User: "alice", Value: 12.5}}},
		Heatmap: schema.HeatmapResult{
			MonthPeriod: "2023-02",
			Month:       []schema.HeatmapSample{{Day: "Mon", Hour: 0, Value: 2}, {Day: "Mon", Hour: 1, Value: 9}},
		},
		Overview: &schema.Overview{Stars: 42, Forks: 7, Commits: 1234},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleBundle()))

	html := buf.String()
	assert.Contains(t, html, "gitinsight: octo/widgets")
	assert.Contains(t, html, "Issue Resolution Duration")
	assert.Contains(t, html, "Code Frequency")
	assert.Contains(t, html, "42 stars, 7 forks, 1234 commits")
	assert.Contains(t, html, "alice")
}

func TestRenderEmptyBundle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, schema.InsightBundle{Repo: "octo/empty"}))
	assert.Contains(t, buf.String(), "Active Dates and Times")
}

func TestChannelBarKeepsChannelOrder(t *testing.T) {
	bar := channelBar("Issues", "", sampleBundle().Issues.Month)
	require.Len(t, bar.MultiSeries, 2)
	assert.Equal(t, "open", bar.MultiSeries[0].Name)
	assert.Equal(t, "close", bar.MultiSeries[1].Name)
}

func TestActivityHeatmapFallsBack(t *testing.T) {
	h := schema.HeatmapResult{
		YearPeriod: "2022",
		Year:       []schema.HeatmapSample{{Day: "Mon", Hour: 0, Value: 1}},
	}
	heatmap := activityHeatmap(h)
	require.Len(t, heatmap.MultiSeries, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName("octo/widgets"))
	require.NoError(t, WriteFile(sampleBundle(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Equal(t, "gitinsight-octo-widgets.html", filepath.Base(path))
}
