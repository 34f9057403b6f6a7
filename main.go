// main is the entry point of the gitinsight CLI.
package main

import (
	"github.com/huangsam/gitinsight/cmd"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
}
