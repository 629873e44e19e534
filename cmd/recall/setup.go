package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/cache"
	"github.com/recall-ai/recall/pkg/config"
	"github.com/recall-ai/recall/pkg/snapshot"
	"github.com/recall-ai/recall/pkg/snapshot/sqlite"
)

// loadConfig reads the config file. A missing file is not an error:
// every command works against the defaults.
func loadConfig(path string) (cfg *config.Config, usedDefaults bool, err error) {
	cfg, err = config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// openStore builds the snapshot store named by the config.
func openStore(cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return sqlite.New(cfg.Store.Path)
	case "memory":
		return snapshot.NewMemoryStore(), nil
	default:
		return snapshot.NewFileStore(cfg.Store.Path), nil
	}
}

// buildCache opens the configured store and loads the cache over it.
// The caller owns the cache and must Shutdown it.
func buildCache(cfg *config.Config, log *zap.Logger) (*cache.Cache, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return cache.New(cache.Options{
		Store:               store,
		Logger:              log,
		MaxEntries:          cfg.Cache.MaxEntries,
		SoftThreshold:       cfg.Cache.SoftThreshold,
		SoftTarget:          cfg.Cache.SoftTarget,
		MaxEntryAge:         cfg.Cache.MaxEntryAge,
		MinAccessCount:      cfg.Cache.MinAccessCount,
		HotPathSize:         cfg.Cache.HotPathSize,
		MaxQuestionLength:   cfg.Cache.MaxQuestionLength,
		SimilarityThreshold: cfg.Similarity.Threshold,
		MaxScanEntries:      cfg.Similarity.MaxScanEntries,
		UseIndex:            cfg.Similarity.UseIndex,
		BreakerThreshold:    cfg.Save.BreakerThreshold,
		BreakerCooldown:     cfg.Save.BreakerCooldown,
	}), nil
}

// runMaintenance runs periodic eviction and save passes until ctx ends.
func runMaintenance(ctx context.Context, c *cache.Cache, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = config.DefaultMaintenanceInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			res := c.Maintain()
			if res.Evicted > 0 || res.Saved {
				log.Debug("maintenance pass",
					zap.Int("evicted", res.Evicted),
					zap.Bool("saved", res.Saved))
			}
		}
	}
}
