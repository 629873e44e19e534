package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "recall",
		Short:   "File-backed response cache for assistant backends",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "recall.yaml", "path to config file")

	root.AddCommand(
		newServeCmd(),
		newMCPCmd(),
		newStatsCmd(),
		newCacheCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
