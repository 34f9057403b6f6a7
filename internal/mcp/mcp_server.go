// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// groupTool describes the MCP tool of one metric group.
type groupTool struct {
	name        string
	description string
	group       schema.MetricGroup
}

// groupTools lists one tool per metric group.
var groupTools = []groupTool{
	{"get_issue_statistics", "Monthly, quarterly and yearly counts of new, closed and commented issues.", schema.IssueStatisticsGroup},
	{"get_issue_resolution_duration", "Quantiles (min, Q1, median, Q3, max) of issue resolution duration in days.", schema.IssueResolutionGroup},
	{"get_pr_statistics", "Counts of opened, merged and reviewed pull requests.", schema.PRStatisticsGroup},
	{"get_code_frequency", "Lines added and removed by pull requests. Removed lines are negative.", schema.CodeFrequencyGroup},
	{"get_contributor_statistics", "Number of contributors per period.", schema.ContributorStatisticsGroup},
	{"get_activity_details", "Activity value of each user in the latest month.", schema.ActivityStatisticsGroup},
	{"get_active_dates_and_times", "Weekday by hour activity heatmap of the latest year, quarter and month.", schema.ActiveDatesAndTimesGroup},
	{"get_overview", "Stars, forks and commit count from GitHub.", schema.OverviewGroup},
}

// NewMCPServer initializes and configures the gitinsight MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"GitInsight Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	for _, t := range groupTools {
		s.AddTool(mcp.NewTool(t.name,
			mcp.WithDescription(t.description),
			mcp.WithString("repo", mcp.Description("GitHub repository in the form owner/repo."), mcp.Required()),
			mcp.WithString("granularity", mcp.Description("Keep only one granularity (all, year, quarter, month). Defaults to 'all'."), mcp.Enum("all", "year", "quarter", "month")),
		), h.groupHandler(t.group))
	}

	return s
}

// StartMCPServer starts the gitinsight MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
