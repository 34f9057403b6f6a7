package schema

import "time"

// RunRecord represents a row from the gitinsight_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	MetricGroup   string
	Repo          string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int
	RecordCount   int
	ConfigParams  *string
}

// HistoryRecord represents a row from the gitinsight_records table.
type HistoryRecord struct {
	RunID       int64
	Granularity string
	Period      string
	Channel     string
	Value       float64
}
