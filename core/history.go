package core

import (
	"context"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
)

// beginRun opens a history run when a history store is configured.
// The run ID travels in the returned context.
func beginRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, group schema.MetricGroup) context.Context {
	store := historyStore(mgr)
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"granularity": string(cfg.Granularity),
		"source_url":  cfg.SourceURL,
		"workers":     cfg.Workers,
		"cache_ttl":   cfg.CacheTTL.String(),
	}
	runID, err := store.BeginRun(group, cfg.Repo, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID <= 0 {
		return ctx
	}
	return withRunID(ctx, runID)
}

// endRun stores the flattened rows of result and closes the run.
func endRun(ctx context.Context, mgr contract.CacheManager, result schema.Tabular) {
	store := historyStore(mgr)
	runID, ok := getRunID(ctx)
	if store == nil || !ok {
		return
	}
	rows := result.Rows()
	if err := store.RecordRows(runID, rows); err != nil {
		contract.LogWarn("Failed to record run rows", err)
	}
	if err := store.EndRun(runID, time.Now(), len(rows)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// historyStore returns the configured history store, if any.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}
