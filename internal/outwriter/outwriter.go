// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/parquet"
	"github.com/huangsam/gitinsight/schema"
)

// PrintGroupResult outputs one metric group result, dispatching based on the output format configured.
func PrintGroupResult(group schema.MetricGroup, result schema.Tabular, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat := createFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRows(w, result.Rows(), fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetRows(cfg, group, result.Rows()); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGroupTable(w, group, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeCSVRows writes flattened rows with a granularity,period,channel,value header.
func writeCSVRows(w io.Writer, rows []schema.MetricRow, fmtFloat func(float64) string) error {
	header := []string{"granularity", "period", "channel", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{string(r.Granularity), r.Period, r.Channel, fmtFloat(r.Value)}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeParquetRows writes flattened rows tagged with repo and group to cfg.OutputFile.
func writeParquetRows(cfg *contract.Config, group schema.MetricGroup, rows []schema.MetricRow) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("an output file is required for parquet output")
	}
	if err := parquet.WriteFile(parquet.ConvertMetricRows(cfg.Repo, group, rows), cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}
