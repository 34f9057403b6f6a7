package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/gitinsight/core/agg"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/github"
	"github.com/huangsam/gitinsight/internal/opendigger"
	"github.com/huangsam/gitinsight/schema"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownGroup is returned by Group for names outside schema.AllMetricGroups.
var ErrUnknownGroup = errors.New("unknown metric group")

// errNoOverview marks an overview lookup that produced nothing.
var errNoOverview = errors.New("overview unavailable")

// channelSource binds one metric document to the channel it contributes to.
type channelSource struct {
	Metric  string
	Channel string
}

// Channels of the multi-channel metric groups, in declaration order.
var (
	issueChannels = []channelSource{
		{Metric: "issues_new", Channel: "open"},
		{Metric: "issues_closed", Channel: "close"},
		{Metric: "issue_comments", Channel: "comment"},
	}
	prChannels = []channelSource{
		{Metric: "change_requests", Channel: "open"},
		{Metric: "change_requests_accepted", Channel: "merge"},
		{Metric: "change_requests_reviews", Channel: "reviews"},
	}
	codeFrequencyChannels = []channelSource{
		{Metric: "code_change_lines_add", Channel: "add"},
		{Metric: "code_change_lines_remove", Channel: "remove"},
	}
)

// Single-document metric names.
const (
	resolutionMetric   = "issue_resolution_duration"
	contributorsMetric = "contributors"
	activityMetric     = "activity_details"
	heatmapMetric      = "active_dates_and_times"
	removeChannel      = "remove"
)

// Insight serves every metric group of a repository. Each entry point fails
// soft: fetch errors are logged once and collapsed into an empty result.
type Insight struct {
	source   contract.SeriesSource
	overview contract.OverviewClient
	mgr      contract.CacheManager
	workers  int
	cacheTTL time.Duration
}

// NewInsight wires the collaborators of an Insight. mgr may be nil, which disables caching.
func NewInsight(source contract.SeriesSource, overview contract.OverviewClient, mgr contract.CacheManager, workers int, cacheTTL time.Duration) *Insight {
	return &Insight{
		source:   source,
		overview: overview,
		mgr:      mgr,
		workers:  max(workers, 1),
		cacheTTL: cacheTTL,
	}
}

// NewInsightFromConfig builds the OpenDigger and GitHub clients described by cfg.
func NewInsightFromConfig(cfg *contract.Config, mgr contract.CacheManager) (*Insight, error) {
	source := opendigger.NewClient(cfg.SourceURL, cfg.Timeout)
	overview, err := github.NewClient(cfg.GitHubToken, cfg.Timeout, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create github client: %w", err)
	}
	return NewInsight(source, overview, mgr, cfg.Workers, cfg.CacheTTL), nil
}

// IssueStatistics sums opened, closed and commented issues per period.
func (in *Insight) IssueStatistics(ctx context.Context, repo string) schema.AggregatedResult {
	return serve(in, schema.IssueStatisticsGroup, repo, schema.EmptyAggregatedResult(), func() Result[schema.AggregatedResult] {
		return in.fetchChannels(ctx, repo, issueChannels)
	})
}

// ResolutionDuration reconstructs the five issue resolution quantiles per period.
func (in *Insight) ResolutionDuration(ctx context.Context, repo string) schema.QuantileResult {
	return serve(in, schema.IssueResolutionGroup, repo, schema.EmptyQuantileResult(), func() Result[schema.QuantileResult] {
		set, err := fetchDecoded(ctx, in.source, repo, resolutionMetric, opendigger.DecodeQuantiles)
		if err != nil {
			return failure[schema.QuantileResult](err)
		}
		return success(agg.ReconstructQuantiles(set))
	})
}

// PRStatistics sums opened, merged and reviewed change requests per period.
func (in *Insight) PRStatistics(ctx context.Context, repo string) schema.AggregatedResult {
	return serve(in, schema.PRStatisticsGroup, repo, schema.EmptyAggregatedResult(), func() Result[schema.AggregatedResult] {
		return in.fetchChannels(ctx, repo, prChannels)
	})
}

// CodeFrequency sums added and removed lines per period. Removals are negative.
func (in *Insight) CodeFrequency(ctx context.Context, repo string) schema.AggregatedResult {
	return serve(in, schema.CodeFrequencyGroup, repo, schema.EmptyAggregatedResult(), func() Result[schema.AggregatedResult] {
		r := in.fetchChannels(ctx, repo, codeFrequencyChannels)
		if r.Err != nil {
			return r
		}
		return success(agg.NegateChannel(r.Value, removeChannel))
	})
}

// ContributorStatistics buckets the contributor counts per granularity.
func (in *Insight) ContributorStatistics(ctx context.Context, repo string) schema.SeriesResult {
	return serve(in, schema.ContributorStatisticsGroup, repo, schema.EmptySeriesResult(), func() Result[schema.SeriesResult] {
		series, err := fetchDecoded(ctx, in.source, repo, contributorsMetric, opendigger.DecodeSeries)
		if err != nil {
			return failure[schema.SeriesResult](err)
		}
		return success(agg.BucketSeries(series))
	})
}

// ActivityDetails returns the per-user activity of the latest month.
func (in *Insight) ActivityDetails(ctx context.Context, repo string) schema.ActivityResult {
	return serve(in, schema.ActivityStatisticsGroup, repo, schema.EmptyActivityResult(), func() Result[schema.ActivityResult] {
		series, err := fetchDecoded(ctx, in.source, repo, activityMetric, opendigger.DecodeActivity)
		if err != nil {
			return failure[schema.ActivityResult](err)
		}
		return success(agg.LatestActivity(series))
	})
}

// ActiveDatesAndTimes reshapes the latest weekly heatmap of each granularity.
func (in *Insight) ActiveDatesAndTimes(ctx context.Context, repo string) schema.HeatmapResult {
	return serve(in, schema.ActiveDatesAndTimesGroup, repo, schema.EmptyHeatmapResult(), func() Result[schema.HeatmapResult] {
		series, err := fetchDecoded(ctx, in.source, repo, heatmapMetric, opendigger.DecodeHeatmap)
		if err != nil {
			return failure[schema.HeatmapResult](err)
		}
		return success(agg.ReshapeLatest(series))
	})
}

// Overview returns the GitHub counters of repo, or nil when they cannot be read.
func (in *Insight) Overview(ctx context.Context, repo string) *schema.Overview {
	return serve(in, schema.OverviewGroup, repo, nil, func() Result[*schema.Overview] {
		if in.overview == nil {
			return failure[*schema.Overview](errNoOverview)
		}
		o, err := in.overview.Overview(ctx, repo)
		if err != nil {
			return failure[*schema.Overview](err)
		}
		if o == nil {
			return failure[*schema.Overview](errNoOverview)
		}
		return success(o)
	})
}

// Group dispatches to the entry point of a metric group.
func (in *Insight) Group(ctx context.Context, group schema.MetricGroup, repo string) (schema.Tabular, error) {
	switch group {
	case schema.IssueStatisticsGroup:
		return in.IssueStatistics(ctx, repo), nil
	case schema.IssueResolutionGroup:
		return in.ResolutionDuration(ctx, repo), nil
	case schema.PRStatisticsGroup:
		return in.PRStatistics(ctx, repo), nil
	case schema.CodeFrequencyGroup:
		return in.CodeFrequency(ctx, repo), nil
	case schema.ContributorStatisticsGroup:
		return in.ContributorStatistics(ctx, repo), nil
	case schema.ActivityStatisticsGroup:
		return in.ActivityDetails(ctx, repo), nil
	case schema.ActiveDatesAndTimesGroup:
		return in.ActiveDatesAndTimes(ctx, repo), nil
	case schema.OverviewGroup:
		return in.Overview(ctx, repo), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
}

// Collect gathers every metric group of repo concurrently.
func (in *Insight) Collect(ctx context.Context, repo string) schema.InsightBundle {
	bundle := schema.InsightBundle{Repo: repo}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	// Entry points never fail, so the group only joins them.
	g.Go(func() error { bundle.Issues = in.IssueStatistics(gctx, repo); return nil })
	g.Go(func() error { bundle.Resolution = in.ResolutionDuration(gctx, repo); return nil })
	g.Go(func() error { bundle.PRs = in.PRStatistics(gctx, repo); return nil })
	g.Go(func() error { bundle.CodeFrequency = in.CodeFrequency(gctx, repo); return nil })
	g.Go(func() error { bundle.Contributors = in.ContributorStatistics(gctx, repo); return nil })
	g.Go(func() error { bundle.Activity = in.ActivityDetails(gctx, repo); return nil })
	g.Go(func() error { bundle.Heatmap = in.ActiveDatesAndTimes(gctx, repo); return nil })
	g.Go(func() error { bundle.Overview = in.Overview(gctx, repo); return nil })

	_ = g.Wait()
	return bundle
}

// fetchChannels fetches every channel concurrently and aggregates them.
// A single failed fetch cancels the rest and fails the whole aggregation.
func (in *Insight) fetchChannels(ctx context.Context, repo string, sources []channelSource) Result[schema.AggregatedResult] {
	inputs := make([]schema.ChannelSeries, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	for i, src := range sources {
		g.Go(func() error {
			series, err := fetchDecoded(gctx, in.source, repo, src.Metric, opendigger.DecodeSeries)
			if err != nil {
				return err
			}
			inputs[i] = schema.ChannelSeries{Channel: src.Channel, Series: series}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failure[schema.AggregatedResult](err)
	}
	return success(agg.Aggregate(inputs))
}

// fetchDecoded fetches one metric document and decodes it.
func fetchDecoded[T any](ctx context.Context, source contract.SeriesSource, repo, metric string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := source.Fetch(ctx, repo, metric)
	if err != nil {
		return zero, fmt.Errorf("failed to fetch %s: %w", metric, err)
	}
	value, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", metric, err)
	}
	return value, nil
}

// serve runs compute through the query cache and collapses a failure into empty.
func serve[T any](in *Insight, group schema.MetricGroup, repo string, empty T, compute func() Result[T]) T {
	r := cachedResult(in, group, repo, compute)
	if r.Err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to collect %s for %s", group.QueryKey(), repo), r.Err)
	}
	return r.OrEmpty(empty)
}
