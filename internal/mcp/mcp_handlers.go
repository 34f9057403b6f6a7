package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/gitinsight/core"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// groupHandler returns the tool handler of one metric group.
func (h *toolHandler) groupHandler(group schema.MetricGroup) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg := h.baseCfg.Clone()
		cfg.Repo = request.GetString("repo", "")
		if err := contract.ValidateRepo(cfg.Repo); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid repo: %v", err)), nil
		}

		cfg.Granularity = schema.AllGranularity
		if g := request.GetString("granularity", ""); g != "" {
			cfg.Granularity = schema.Granularity(strings.ToLower(g))
			if _, ok := schema.ValidGranularityFilters[cfg.Granularity]; !ok {
				return mcp.NewToolResultError(fmt.Sprintf("invalid granularity %q: must be all, year, quarter or month", g)), nil
			}
		}

		result, _, err := core.GetGroupResult(core.WithSuppressHeader(ctx), cfg, h.mgr, group)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", group.QueryKey(), err)), nil
		}

		jsonData, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
