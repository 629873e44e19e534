package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for the configured snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log, err := cfg.Log.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer log.Sync()

			ca, err := buildCache(cfg, log)
			if err != nil {
				return err
			}
			defer ca.Shutdown()

			st := ca.Stats()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Entries\t%d\n", st.Entries)
			fmt.Fprintf(w, "Hits\t%d\n", st.Hits)
			fmt.Fprintf(w, "Misses\t%d\n", st.Misses)
			fmt.Fprintf(w, "Evictions\t%d\n", st.Evictions)
			fmt.Fprintf(w, "Errors\t%d\n", st.Errors)
			fmt.Fprintf(w, "Store\t%s\n", st.StoreDriver)
			fmt.Fprintf(w, "Dirty\t%t\n", st.Dirty)
			if st.Degraded {
				fmt.Fprintf(w, "Degraded\t%s\n", st.DegradedReason)
			}
			return w.Flush()
		},
	}
}
