package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistoryStore(t *testing.T) (*HistoryStoreImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestHistoryStoreRunLifecycle(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(schema.IssueStatisticsGroup, "golang/go", start, map[string]any{"workers": 4})
	require.NoError(t, err)
	assert.Positive(t, runID)

	rows := []schema.MetricRow{
		{Granularity: schema.YearGranularity, Period: "2023", Channel: "open", Value: 5},
		{Granularity: schema.MonthGranularity, Period: "2023-02", Channel: "close", Value: 1},
	}
	require.NoError(t, store.RecordRows(runID, rows))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), len(rows)))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Len(t, run.RunUUID, 36)
	assert.Equal(t, "issue.statistics", run.MetricGroup)
	assert.Equal(t, "golang/go", run.Repo)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, 1500, *run.RunDurationMs)
	assert.Equal(t, 2, run.RecordCount)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"workers":4}`, *run.ConfigParams)

	records, err := store.GetAllRecords()
	require.NoError(t, err)
	assert.Equal(t, []schema.HistoryRecord{
		{RunID: runID, Granularity: "year", Period: "2023", Channel: "open", Value: 5},
		{RunID: runID, Granularity: "month", Period: "2023-02", Channel: "close", Value: 1},
	}, records)
}

func TestHistoryStoreStatus(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		runID, err := store.BeginRun(schema.OverviewGroup, "a/b", first.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordRows(runID, []schema.MetricRow{{Granularity: schema.SnapshotGranularity, Period: "current", Channel: "stars", Value: 1}}))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, 3, status.TotalRecords)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.Equal(t, map[string]int64{runsTable: 3, recordsTable: 3}, status.TableSizes)

	var buf bytes.Buffer
	PrintHistoryStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Runs: 3")
	assert.Contains(t, buf.String(), "gitinsight_records: 3 rows")
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(schema.OverviewGroup, "a/b", time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordRows(runID, []schema.MetricRow{{Channel: "x"}}))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMigrateHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	var buf bytes.Buffer
	require.NoError(t, MigrateHistory(&buf, schema.SQLiteBackend, path, -1))
	assert.Contains(t, buf.String(), "Successfully migrated from version 0 to version 2")

	buf.Reset()
	require.NoError(t, MigrateHistory(&buf, schema.SQLiteBackend, path, -1))
	assert.Contains(t, buf.String(), "No migration needed")

	buf.Reset()
	require.NoError(t, MigrateHistory(&buf, schema.SQLiteBackend, path, 1))
	assert.Contains(t, buf.String(), "to version 1")

	buf.Reset()
	require.NoError(t, MigrateHistory(&buf, schema.SQLiteBackend, path, 0))
	assert.Contains(t, buf.String(), "rolled back from version 1 to version 0")

	assert.Error(t, MigrateHistory(&buf, schema.NoneBackend, "", -1))
}

func TestExecuteHistoryExport(t *testing.T) {
	store, _ := newSQLiteHistoryStore(t)
	out := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer

	err := ExecuteHistoryExport(&buf, store, out)
	assert.EqualError(t, err, "no history data found to export")

	runID, err := store.BeginRun(schema.PRStatisticsGroup, "a/b", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordRows(runID, []schema.MetricRow{{Granularity: schema.MonthGranularity, Period: "2024-01", Channel: "merge", Value: 3}}))
	require.NoError(t, store.EndRun(runID, time.Now(), 1))

	require.NoError(t, ExecuteHistoryExport(&buf, store, out))
	for _, suffix := range []string{".runs.parquet", ".records.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, buf.String(), "Exported 1 runs")

	assert.Error(t, ExecuteHistoryExport(&buf, store, ""))
	assert.Error(t, ExecuteHistoryExport(&buf, nil, out))
}
