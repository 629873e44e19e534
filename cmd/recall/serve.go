package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/config"
	"github.com/recall-ai/recall/pkg/metrics"
	"github.com/recall-ai/recall/pkg/server"
)

func newServeCmd() *cobra.Command {
	var watchConfig bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP cache server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, usedDefaults, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

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

			reg := prometheus.NewRegistry()
			reg.MustRegister(metrics.NewPromCollector(ca.Metrics(), ca))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go runMaintenance(ctx, ca, cfg.Maintenance.Interval, log)

			if watchConfig {
				go func() {
					err := config.Watch(ctx, configPath, log, func(next *config.Config) {
						ca.SetTunables(next.Tunables())
					})
					if err != nil {
						log.Warn("config watch stopped", zap.Error(err))
					}
				}()
			}

			srv := server.New(cfg.Server.Listen, ca, reg, log)
			err = srv.ListenAndServe(ctx)

			if serr := ca.Shutdown(); serr != nil {
				log.Warn("final snapshot save failed", zap.Error(serr))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload tunables when the config file changes")
	return cmd
}
