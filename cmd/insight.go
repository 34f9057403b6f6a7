package cmd

import (
	"github.com/huangsam/gitinsight/core"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/spf13/cobra"
)

// newGroupCmd builds the data command of one metric group.
func newGroupCmd(use, short, long string, group schema.MetricGroup) *cobra.Command {
	return &cobra.Command{
		Use:     use + " owner/repo",
		Short:   short,
		Long:    long,
		Args:    cobra.ExactArgs(1),
		PreRunE: sharedSetupWrapper,
		Run: func(_ *cobra.Command, _ []string) {
			if err := core.ExecuteGroup(rootCtx, cfg, cacheManager, group); err != nil {
				contract.LogFatal("Cannot fetch "+group.QueryKey(), err)
			}
		},
	}
}

// issuesCmd shows new, closed and commented issues.
var issuesCmd = newGroupCmd("issues", "Show issue counts per year, quarter and month.",
	`Sum the OpenDigger issue series into three channels:
- open: issues opened in the period
- close: issues closed in the period
- comment: issue comments in the period

Examples:
  # Monthly issue flow of a repository
  gitinsight issues apache/echarts --granularity month

  # Export everything as CSV
  gitinsight issues apache/echarts --output csv --output-file issues.csv`,
	schema.IssueStatisticsGroup)

// resolutionCmd shows issue resolution duration quantiles.
var resolutionCmd = newGroupCmd("resolution", "Show issue resolution duration quantiles in days.",
	`Show the min, Q1, median, Q3 and max of issue resolution duration per period.

A period without a value for one quantile shows 0 in that slot.

Examples:
  gitinsight resolution apache/echarts --granularity year`,
	schema.IssueResolutionGroup)

// prsCmd shows opened, merged and reviewed pull requests.
var prsCmd = newGroupCmd("prs", "Show pull request counts per year, quarter and month.",
	`Sum the OpenDigger change request series into three channels:
- open: pull requests opened in the period
- merge: pull requests merged in the period
- reviews: pull request reviews in the period

Examples:
  gitinsight prs apache/echarts --limit 12`,
	schema.PRStatisticsGroup)

// codeFrequencyCmd shows lines added and removed.
var codeFrequencyCmd = newGroupCmd("code-frequency", "Show lines added and removed by pull requests.",
	`Sum the lines added and removed by pull requests per period.

Removed lines are reported as negative values so that both channels can be
plotted around zero.

Examples:
  gitinsight code-frequency apache/echarts --granularity quarter`,
	schema.CodeFrequencyGroup)

// contributorsCmd shows contributor counts.
var contributorsCmd = newGroupCmd("contributors", "Show contributor counts per period.",
	`Show the number of contributors per year, quarter and month.

Examples:
  gitinsight contributors apache/echarts --output json`,
	schema.ContributorStatisticsGroup)

// activityCmd shows the most active users of the latest month.
var activityCmd = newGroupCmd("activity", "Show the most active users of the latest month.",
	`Show each user's OpenDigger activity value in the latest month, in source order.

Examples:
  gitinsight activity apache/echarts --limit 10`,
	schema.ActivityStatisticsGroup)

// heatmapCmd shows weekday by hour activity.
var heatmapCmd = newGroupCmd("heatmap", "Show the weekday by hour activity heatmap.",
	`Show the latest yearly, quarterly and monthly activity heatmaps.

Each heatmap has one row per weekday (Mon to Sun) and one column per hour.
Terminals narrower than the full grid merge hours into blocks of four.

Examples:
  gitinsight heatmap apache/echarts --granularity month
  gitinsight heatmap apache/echarts --width 200`,
	schema.ActiveDatesAndTimesGroup)

// overviewCmd shows stars, forks and commits.
var overviewCmd = newGroupCmd("overview", "Show stars, forks and commit count from GitHub.",
	`Read repository counters from the GitHub REST API.

Set GITHUB_TOKEN (or --github-token) to avoid the anonymous rate limit.

Examples:
  GITHUB_TOKEN=... gitinsight overview apache/echarts`,
	schema.OverviewGroup)
