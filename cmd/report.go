package cmd

import (
	"github.com/huangsam/gitinsight/core"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd renders every metric group as an HTML chart page.
var reportCmd = &cobra.Command{
	Use:   "report owner/repo",
	Short: "Render all metrics of a repository as an HTML report.",
	Long: `Collect every metric group concurrently and render the monthly series as charts.

The page contains:
- Bar charts of issues, pull requests and code frequency
- A boxplot of issue resolution duration
- A line chart of contributors
- The most active users and the activity heatmap

Examples:
  # Write gitinsight-apache-echarts.html and open it
  gitinsight report apache/echarts --open

  # Choose the file name
  gitinsight report apache/echarts --output-file echarts.html`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot render report", err)
		}
	},
}
