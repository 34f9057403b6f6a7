// Package main benchmarks the gitinsight CLI against live OpenDigger data.
//
// For every repository and data command it measures three things:
//   - uncached fetches at each worker count, to show the effect of fetch fan-out
//   - the first fetch after the cache was cleared (cold)
//   - the following fetches served from the sqlite cache (warm)
//
// Each cell reports the median of its runs. Results are written as CSV.
//
// Prerequisites:
// - gitinsight binary installed and available in PATH
// - Network access to the OpenDigger endpoint
//
// Usage: go run benchmark/main.go [output-dir]
//
//	output-dir: Directory for the CSV results (defaults to the temp directory)
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const binary = "gitinsight"

// Plan describes what to benchmark.
type Plan struct {
	Repos        []string
	Commands     []string
	WorkerCounts []int
	Runs         int
	Timeout      time.Duration
}

// Measurement is one row of the result CSV.
type Measurement struct {
	Repo    string
	Command string
	Mode    string // "workers=N", "cold" or "warm"
	Median  time.Duration
	Failed  int
}

func main() {
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(1)
	}
	outputDir := os.TempDir()
	if len(os.Args) == 2 {
		outputDir = os.Args[1]
	}

	if _, err := exec.LookPath(binary); err != nil {
		fmt.Printf("%s not found in PATH\n", binary)
		os.Exit(1)
	}

	plan := Plan{
		Repos:        []string{"X-lab2017/open-digger", "apache/echarts", "golang/go"},
		Commands:     []string{"issues", "prs", "code-frequency", "contributors", "heatmap"},
		WorkerCounts: []int{1, 4, 8},
		Runs:         3,
		Timeout:      2 * time.Minute,
	}

	var measurements []Measurement
	for _, repo := range plan.Repos {
		for _, command := range plan.Commands {
			fmt.Printf("%s %s\n", command, repo)
			measurements = append(measurements, measureWorkers(plan, repo, command)...)
			measurements = append(measurements, measureCache(plan, repo, command)...)
		}
	}

	path, err := writeCSV(outputDir, measurements)
	if err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printTable(measurements)
	fmt.Printf("Results saved to %s\n", path)
}

// measureWorkers times uncached fetches for every worker count.
func measureWorkers(plan Plan, repo, command string) []Measurement {
	out := make([]Measurement, 0, len(plan.WorkerCounts))
	for _, workers := range plan.WorkerCounts {
		args := []string{command, repo, "--cache-backend", "none", "--workers", strconv.Itoa(workers)}
		times, failed := repeat(plan, args, plan.Runs)
		out = append(out, Measurement{
			Repo: repo, Command: command, Mode: fmt.Sprintf("workers=%d", workers),
			Median: median(times), Failed: failed,
		})
	}
	return out
}

// measureCache clears the sqlite cache, then times one cold and several warm fetches.
func measureCache(plan Plan, repo, command string) []Measurement {
	if output, err := exec.Command(binary, "cache", "clear", "--cache-backend", "sqlite").CombinedOutput(); err != nil {
		fmt.Printf("  cache clear failed: %v\n%s\n", err, output)
	}

	args := []string{command, repo, "--cache-backend", "sqlite"}
	cold, coldFailed := repeat(plan, args, 1)
	warm, warmFailed := repeat(plan, args, plan.Runs)
	return []Measurement{
		{Repo: repo, Command: command, Mode: "cold", Median: median(cold), Failed: coldFailed},
		{Repo: repo, Command: command, Mode: "warm", Median: median(warm), Failed: warmFailed},
	}
}

// repeat runs the binary n times and returns the durations of the successful runs.
func repeat(plan Plan, args []string, n int) (times []time.Duration, failed int) {
	for range n {
		elapsed, err := timeRun(plan.Timeout, args)
		if err != nil {
			failed++
			continue
		}
		times = append(times, elapsed)
	}
	return times, failed
}

// timeRun runs the binary once. A run without the fetch footer counts as failed.
func timeRun(timeout time.Duration, args []string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	elapsed := time.Since(start)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return 0, ctx.Err()
	case err != nil:
		return 0, err
	case !strings.Contains(string(output), "Fetched insight."):
		return 0, errors.New("missing fetch footer")
	}
	return elapsed, nil
}

// median returns the middle duration, or 0 for no samples.
func median(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	sorted := slices.Clone(times)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "FAILED"
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// writeCSV writes measurements to a timestamped CSV file and returns its path.
func writeCSV(outputDir string, measurements []Measurement) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("gitinsight_benchmark_%s.csv", time.Now().Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "cmd", "mode", "median", "failed"}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, m := range measurements {
		row := []string{m.Repo, m.Command, m.Mode, formatDuration(m.Median), strconv.Itoa(m.Failed)}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return path, writer.Error()
}

func printTable(measurements []Measurement) {
	fmt.Printf("%-24s %-16s %-10s %10s %7s\n", "REPO", "COMMAND", "MODE", "MEDIAN", "FAILED")
	for _, m := range measurements {
		fmt.Printf("%-24s %-16s %-10s %10s %7d\n", m.Repo, m.Command, m.Mode, formatDuration(m.Median), m.Failed)
	}
}
