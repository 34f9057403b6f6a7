// Package core has core logic for collecting, caching and tracking repository insights.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/outwriter"
	"github.com/huangsam/gitinsight/internal/report"
	"github.com/huangsam/gitinsight/schema"
	"github.com/pkg/browser"
)

// openBrowser is swapped out in tests.
var openBrowser = browser.OpenFile

// GetGroupResult collects one metric group of cfg.Repo narrowed to cfg.Granularity.
// It does not print or track anything, which suits the MCP and HTTP surfaces.
func GetGroupResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, group schema.MetricGroup) (schema.Tabular, time.Duration, error) {
	start := time.Now()
	if err := contract.ValidateRepo(cfg.Repo); err != nil {
		return nil, 0, err
	}
	in, err := NewInsightFromConfig(cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	result, err := in.Group(ctx, group, cfg.Repo)
	if err != nil {
		return nil, 0, err
	}
	return schema.FilterGranularity(result, cfg.Granularity), time.Since(start), nil
}

// ExecuteGroup collects one metric group, records the run in history
// and prints the result.
func ExecuteGroup(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, group schema.MetricGroup) error {
	if err := contract.ValidateRepo(cfg.Repo); err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		logGroupHeader(cfg, group)
	}

	ctx = beginRun(ctx, cfg, mgr, group)
	result, duration, err := GetGroupResult(ctx, cfg, mgr, group)
	if err != nil {
		return err
	}
	endRun(ctx, mgr, result)

	return outwriter.PrintGroupResult(group, result, cfg, duration)
}

// GetBundle collects every metric group of cfg.Repo.
func GetBundle(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.InsightBundle, error) {
	if err := contract.ValidateRepo(cfg.Repo); err != nil {
		return schema.InsightBundle{}, err
	}
	in, err := NewInsightFromConfig(cfg, mgr)
	if err != nil {
		return schema.InsightBundle{}, err
	}
	return in.Collect(ctx, cfg.Repo), nil
}

// ExecuteReport collects every metric group and writes them as an HTML chart page.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if !shouldSuppressHeader(ctx) {
		logGroupHeader(cfg, "report")
	}
	start := time.Now()
	bundle, err := GetBundle(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	path := cfg.OutputFile
	if path == "" {
		path = report.DefaultFileName(cfg.Repo)
	}
	if err := report.WriteFile(bundle, path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote report to %s in %v\n", path, time.Since(start))

	if cfg.OpenReport {
		if err := openBrowser(path); err != nil {
			contract.LogWarn("Failed to open report in browser", err)
		}
	}
	return nil
}

// logGroupHeader prints a concise, 2-line header for each command.
// It goes to stderr so that stdout only carries results.
func logGroupHeader[G ~string](cfg *contract.Config, group G) {
	fmt.Fprintf(os.Stderr, "🔎 Repo: %s (Group: %s)\n", cfg.Repo, group)
	fmt.Fprintf(os.Stderr, "📅 Granularity: %s\n", cfg.Granularity)
}
