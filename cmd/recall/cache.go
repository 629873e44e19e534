package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot store",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry and persist the empty snapshot",
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

			n := ca.Clear()
			if err := ca.SaveNow(); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			if err := ca.Shutdown(); err != nil {
				return fmt.Errorf("close store: %w", err)
			}
			fmt.Printf("Cleared %d entries.\n", n)
			return nil
		},
	}

	compactCmd := &cobra.Command{
		Use:   "compact",
		Short: "Run an offline maintenance pass against the snapshot",
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

			res := ca.Maintain()
			if err := ca.Shutdown(); err != nil {
				return fmt.Errorf("close store: %w", err)
			}

			fmt.Printf("Evicted %d entries.\n", res.Evicted)
			if res.Saved {
				fmt.Println("Snapshot saved.")
			} else {
				fmt.Println("Snapshot unchanged.")
			}
			return nil
		},
	}

	cmd.AddCommand(clearCmd, compactCmd)
	return cmd
}
