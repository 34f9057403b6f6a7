// Package parquet exports gitinsight rows and run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitinsight/schema"
	"github.com/parquet-go/parquet-go"
)

// MetricRow is one flattened result row of a metric group.
type MetricRow struct {
	// Repo is the "owner/repo" the row was fetched for
	Repo string `parquet:"repo,snappy,dict"`

	// MetricGroup is the group the row belongs to, e.g. issue.statistics
	MetricGroup string `parquet:"metric_group,snappy,dict"`

	// Granularity is year, quarter, month or snapshot
	Granularity string `parquet:"granularity,snappy,dict"`

	// Period is the calendar key of the row
	Period string `parquet:"period,snappy"`

	// Channel names the value within its period
	Channel string `parquet:"channel,snappy,dict"`

	// Value is the aggregated metric value
	Value float64 `parquet:"value,snappy"`
}

// Run represents a single tracked fetch run.
// This struct maps to the gitinsight_runs database table.
type Run struct {
	RunID         int64      `parquet:"run_id,snappy"`
	RunUUID       string     `parquet:"run_uuid,snappy"`
	MetricGroup   string     `parquet:"metric_group,snappy,dict"`
	Repo          string     `parquet:"repo,snappy,dict"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	RecordCount   int32      `parquet:"record_count,snappy"`
	ConfigParams  *string    `parquet:"config_params,optional,snappy"`
}

// Record represents one stored row of a run.
// This struct maps to the gitinsight_records database table.
type Record struct {
	RunID       int64   `parquet:"run_id,snappy"`
	Granularity string  `parquet:"granularity,snappy,dict"`
	Period      string  `parquet:"period,snappy"`
	Channel     string  `parquet:"channel,snappy,dict"`
	Value       float64 `parquet:"value,snappy"`
}

// Write encodes data as a Parquet file on w. The schema is inferred from T's struct tags.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes data to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertMetricRows tags flattened result rows with their repository and group.
func ConvertMetricRows(repo string, group schema.MetricGroup, rows []schema.MetricRow) []MetricRow {
	result := make([]MetricRow, len(rows))
	for i, row := range rows {
		result[i] = MetricRow{
			Repo:        repo,
			MetricGroup: string(group),
			Granularity: string(row.Granularity),
			Period:      row.Period,
			Channel:     row.Channel,
			Value:       row.Value,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		var duration *int32
		if record.RunDurationMs != nil {
			d := int32(*record.RunDurationMs)
			duration = &d
		}
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			MetricGroup:   record.MetricGroup,
			Repo:          record.Repo,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: duration,
			RecordCount:   int32(record.RecordCount),
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertHistoryRecords converts schema.HistoryRecord to Record for Parquet export.
func ConvertHistoryRecords(records []schema.HistoryRecord) []Record {
	result := make([]Record, len(records))
	for i, record := range records {
		result[i] = Record{
			RunID:       record.RunID,
			Granularity: record.Granularity,
			Period:      record.Period,
			Channel:     record.Channel,
			Value:       record.Value,
		}
	}
	return result
}
