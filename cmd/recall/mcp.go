package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the cache to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, usedDefaults, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// stdout carries the protocol; zap writes to stderr.
			log, err := cfg.Log.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer log.Sync()
			if usedDefaults {
				log.Warn("config file not found, using defaults", zap.String("path", configPath))
			}

			ca, err := buildCache(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go runMaintenance(ctx, ca, cfg.Maintenance.Interval, log)

			srv := mcp.New(ca, version, log)
			err = srv.Run(ctx, os.Stdin, os.Stdout)

			if serr := ca.Shutdown(); serr != nil {
				log.Warn("final snapshot save failed", zap.Error(serr))
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
