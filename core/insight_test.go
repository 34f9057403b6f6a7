package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRepo = "octo/widgets"

// stubFetch registers a successful fetch of metric returning body.
func stubFetch(source *contract.MockSeriesSource, metric, body string) *mock.Call {
	return source.On("Fetch", mock.Anything, testRepo, metric).Return([]byte(body), nil)
}

func TestIssueStatistics(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "issues_new", `{"2023-01": 3, "2023-02": 2}`)
	stubFetch(source, "issues_closed", `{"2023-02": 1}`)
	stubFetch(source, "issue_comments", `{}`)

	in := NewInsight(source, nil, nil, 2, 0)
	result := in.IssueStatistics(context.Background(), testRepo)

	assert.Equal(t, []schema.ChannelRecord{
		{Period: "2023-01", Channel: "open", Value: 3},
		{Period: "2023-02", Channel: "open", Value: 2},
		{Period: "2023-02", Channel: "close", Value: 1},
	}, result.Month)
	assert.Equal(t, []schema.ChannelRecord{
		{Period: "2023Q1", Channel: "open", Value: 5},
		{Period: "2023Q1", Channel: "close", Value: 1},
	}, result.Quarter)
	assert.Equal(t, []schema.ChannelRecord{
		{Period: "2023", Channel: "open", Value: 5},
		{Period: "2023", Channel: "close", Value: 1},
	}, result.Year)
	source.AssertExpectations(t)
}

func TestIssueStatisticsFailSoft(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "issues_new", `{"2023-01": 3}`).Maybe()
	source.On("Fetch", mock.Anything, testRepo, "issues_closed").Return(nil, errors.New("boom"))
	stubFetch(source, "issue_comments", `{}`).Maybe()

	in := NewInsight(source, nil, nil, 1, 0)
	result := in.IssueStatistics(context.Background(), testRepo)

	assert.Equal(t, schema.EmptyAggregatedResult(), result)
}

func TestIssueStatisticsMalformedDocument(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "issues_new", `[1, 2, 3]`)
	stubFetch(source, "issues_closed", `{}`).Maybe()
	stubFetch(source, "issue_comments", `{}`).Maybe()

	in := NewInsight(source, nil, nil, 1, 0)
	assert.True(t, in.IssueStatistics(context.Background(), testRepo).IsEmpty())
}

func TestPRStatisticsChannelOrder(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "change_requests", `{"2022-12": 4}`)
	stubFetch(source, "change_requests_accepted", `{"2022-12": 2}`)
	stubFetch(source, "change_requests_reviews", `{"2022-12": 7, "2022-12-raw": 9}`)

	in := NewInsight(source, nil, nil, 3, 0)
	result := in.PRStatistics(context.Background(), testRepo)

	assert.Equal(t, []schema.ChannelRecord{
		{Period: "2022Q4", Channel: "open", Value: 4},
		{Period: "2022Q4", Channel: "merge", Value: 2},
		{Period: "2022Q4", Channel: "reviews", Value: 7},
	}, result.Quarter)
}

func TestCodeFrequencyNegatesRemovals(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "code_change_lines_add", `{"2023-03": 100}`)
	stubFetch(source, "code_change_lines_remove", `{"2023-03": 40}`)

	in := NewInsight(source, nil, nil, 2, 0)
	result := in.CodeFrequency(context.Background(), testRepo)

	assert.Equal(t, []schema.ChannelRecord{
		{Period: "2023", Channel: "add", Value: 100},
		{Period: "2023", Channel: "remove", Value: -40},
	}, result.Year)
}

func TestResolutionDurationDefaultsMissingQuantiles(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "issue_resolution_duration", `{"quantile_0": {"2023-01": 5}}`)

	in := NewInsight(source, nil, nil, 1, 0)
	result := in.ResolutionDuration(context.Background(), testRepo)

	require.Len(t, result.Month, 1)
	assert.Equal(t, schema.QuantileRecord{Period: "2023-01", Values: [5]float64{5, 0, 0, 0, 0}}, result.Month[0])
}

func TestContributorStatistics(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023": 12, "2023Q1": 7, "2023-01": 3, "2023-02": 4, "2021-10-raw": 1}`)

	in := NewInsight(source, nil, nil, 1, 0)
	result := in.ContributorStatistics(context.Background(), testRepo)

	assert.Equal(t, []schema.SeriesRecord{{Period: "2023", Value: 12}}, result.Year)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023Q1", Value: 7}}, result.Quarter)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023-01", Value: 3}, {Period: "2023-02", Value: 4}}, result.Month)
}

func TestActivityDetails(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "activity_details", `{"2023-10": [["old", 1]], "2023-11": [["alice", 12.5], ["bob", 3]], "2023": [["yearly", 99]]}`)

	in := NewInsight(source, nil, nil, 1, 0)
	result := in.ActivityDetails(context.Background(), testRepo)

	assert.Equal(t, "2023-11", result.Period)
	assert.Equal(t, []schema.ActivityDetail{{User: "alice", Value: 12.5}, {User: "bob", Value: 3}}, result.Details)
}

func TestActiveDatesAndTimes(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "active_dates_and_times", `{"2023-01": [1, 2], "2023-06": [5, 6, 7]}`)

	in := NewInsight(source, nil, nil, 1, 0)
	result := in.ActiveDatesAndTimes(context.Background(), testRepo)

	assert.Equal(t, "2023-06", result.MonthPeriod)
	assert.Equal(t, []schema.HeatmapSample{
		{Day: "Mon", Hour: 0, Value: 5},
		{Day: "Mon", Hour: 1, Value: 6},
		{Day: "Mon", Hour: 2, Value: 7},
	}, result.Month)
	assert.Empty(t, result.Year)
	assert.Empty(t, result.YearPeriod)
}

func TestOverview(t *testing.T) {
	client := &contract.MockOverviewClient{}
	client.On("Overview", mock.Anything, testRepo).Return(&schema.Overview{Stars: 10, Forks: 3, Commits: 250}, nil)
	client.On("Overview", mock.Anything, "broken/repo").Return(nil, errors.New("rate limited"))

	in := NewInsight(&contract.MockSeriesSource{}, client, nil, 1, 0)

	assert.Equal(t, &schema.Overview{Stars: 10, Forks: 3, Commits: 250}, in.Overview(context.Background(), testRepo))
	assert.Nil(t, in.Overview(context.Background(), "broken/repo"))
}

func TestOverviewWithoutClient(t *testing.T) {
	in := NewInsight(&contract.MockSeriesSource{}, nil, nil, 1, 0)
	assert.Nil(t, in.Overview(context.Background(), testRepo))
}

func TestGroupDispatch(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023": 1}`)
	in := NewInsight(source, nil, nil, 1, 0)

	result, err := in.Group(context.Background(), schema.ContributorStatisticsGroup, testRepo)
	require.NoError(t, err)
	assert.IsType(t, schema.SeriesResult{}, result)

	_, err = in.Group(context.Background(), "bogus", testRepo)
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestCollect(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023-05": 8}`)
	source.On("Fetch", mock.Anything, testRepo, mock.Anything).Return([]byte(`{}`), nil)
	client := &contract.MockOverviewClient{}
	client.On("Overview", mock.Anything, testRepo).Return(&schema.Overview{Stars: 1}, nil)

	in := NewInsight(source, client, nil, 4, 0)
	bundle := in.Collect(context.Background(), testRepo)

	assert.Equal(t, testRepo, bundle.Repo)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023-05", Value: 8}}, bundle.Contributors.Month)
	assert.True(t, bundle.Issues.IsEmpty())
	assert.Equal(t, 1, bundle.Overview.Stars)
	assert.Empty(t, bundle.Activity.Details)
}

func TestResultOrEmpty(t *testing.T) {
	assert.Equal(t, 3, success(3).OrEmpty(0))
	assert.Equal(t, 0, failure[int](errors.New("x")).OrEmpty(0))
}
