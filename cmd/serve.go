package cmd

import (
	"github.com/huangsam/gitinsight/core"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve all metric groups over an HTTP JSON API.",
	Long: `Start an HTTP server with one GET route per metric group under /api/insight.

Every route takes the repo_name query parameter and an optional granularity.
Responses use the envelope {"success": true, "data": ...}.

Examples:
  gitinsight serve --addr :8001
  curl 'localhost:8001/api/insight/issue/statistics?repo_name=apache/echarts'`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		in, err := core.NewInsightFromConfig(cfg, cacheManager)
		if err != nil {
			contract.LogFatal("Cannot create insight service", err)
		}
		if err := server.Run(rootCtx, cfg.ServeAddr, in); err != nil {
			contract.LogFatal("Server stopped", err)
		}
	},
}
