// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitinsight/schema"
)

// SeriesSource fetches raw metric documents for a repository.
// This allows the aggregation flow to be tested without network access.
type SeriesSource interface {
	// Fetch returns the raw JSON document of one metric, e.g. "issues_new".
	Fetch(ctx context.Context, repo string, metric string) ([]byte, error)
}

// OverviewClient reads repository-level counters from the code host.
type OverviewClient interface {
	// Overview returns stars, forks and commit count of an "owner/repo" repository.
	Overview(ctx context.Context, repo string) (*schema.Overview, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetQueryStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking fetch runs and their flattened results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(group schema.MetricGroup, repo string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordRows stores the flattened rows produced by a run
	RecordRows(runID int64, rows []schema.MetricRow) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRecords int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every tracked run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRecords retrieves every tracked row
	GetAllRecords() ([]schema.HistoryRecord, error)

	// Close closes the underlying connection
	Close() error
}
