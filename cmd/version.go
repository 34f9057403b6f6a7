package cmd

import (
	"runtime"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd prints build details and the default metric source.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gitinsight.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash
- Build timestamp
- Go runtime version and platform
- Default OpenDigger source`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("gitinsight CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Source:  %s\n", contract.DefaultSourceURL)
	},
}
