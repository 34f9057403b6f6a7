package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	mcp_internal "github.com/huangsam/gitinsight/internal/mcp"
	"github.com/huangsam/gitinsight/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(cfg, mgr)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerRegistersEveryGroup(t *testing.T) {
	s := mcp_internal.NewMCPServer(&contract.Config{}, nil)
	for _, name := range []string{
		"get_issue_statistics",
		"get_issue_resolution_duration",
		"get_pr_statistics",
		"get_code_frequency",
		"get_contributor_statistics",
		"get_activity_details",
		"get_active_dates_and_times",
		"get_overview",
	} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{Granularity: schema.AllGranularity}

	t.Run("missing repo", func(t *testing.T) {
		res := callTool(t, baseCfg, "get_issue_statistics", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "owner/repo")
	})

	t.Run("malformed repo", func(t *testing.T) {
		res := callTool(t, baseCfg, "get_pr_statistics", map[string]any{"repo": "not a repo"})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid repo")
	})

	t.Run("invalid granularity", func(t *testing.T) {
		res := callTool(t, baseCfg, "get_code_frequency", map[string]any{"repo": "octo/widgets", "granularity": "week"})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid granularity")
	})
}

func TestMCPServerHandlers_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/octo/widgets/contributors.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"2023": 7, "2023Q1": 4, "2023-01": 2, "2023-02": 2}`))
	}))
	defer ts.Close()

	baseCfg := &contract.Config{
		SourceURL:   ts.URL,
		Timeout:     5 * time.Second,
		Workers:     2,
		Granularity: schema.AllGranularity,
	}

	res := callTool(t, baseCfg, "get_contributor_statistics", map[string]any{"repo": "octo/widgets", "granularity": "month"})
	require.False(t, res.IsError)

	var series schema.SeriesResult
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &series))
	assert.Empty(t, series.Year)
	assert.Equal(t, []schema.SeriesRecord{{Period: "2023-01", Value: 2}, {Period: "2023-02", Value: 2}}, series.Month)

	// Missing documents still produce an empty result
	res = callTool(t, baseCfg, "get_issue_statistics", map[string]any{"repo": "octo/widgets"})
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, `"month": []`)
}
