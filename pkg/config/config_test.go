package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/cache"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, "file", cfg.Store.Driver)
	require.Equal(t, "recall-cache.json", cfg.Store.Path)
	require.Equal(t, cache.DefaultMaxEntries, cfg.Cache.MaxEntries)
	require.Equal(t, 0.85, cfg.Similarity.Threshold)
	require.Equal(t, time.Minute, cfg.Maintenance.Interval)
	require.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("RECALL_DATA_DIR", "/var/lib/recall")

	content := `
store:
  driver: sqlite
  path: ${RECALL_DATA_DIR}/cache.db
cache:
  max_entries: 500
  soft_threshold: 400
  soft_target: 300
  max_entry_age: 48h
similarity:
  threshold: 0.7
  use_index: true
maintenance:
  interval: 30s
server:
  listen: ":9090"
log:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "recall.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, "/var/lib/recall/cache.db", cfg.Store.Path)
	require.Equal(t, 500, cfg.Cache.MaxEntries)
	require.Equal(t, 400, cfg.Cache.SoftThreshold)
	require.Equal(t, 48*time.Hour, cfg.Cache.MaxEntryAge)
	require.Equal(t, cache.DefaultHotPathSize, cfg.Cache.HotPathSize)
	require.Equal(t, 0.7, cfg.Similarity.Threshold)
	require.True(t, cfg.Similarity.UseIndex)
	require.Equal(t, 30*time.Second, cfg.Maintenance.Interval)
	require.Equal(t, ":9090", cfg.Server.Listen)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/recall.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [not, a, map]"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInconsistentLimits(t *testing.T) {
	// Lowering max_entries without the soft settings breaks the
	// soft_target < soft_threshold <= max_entries ordering.
	path := filepath.Join(t.TempDir(), "recall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_entries: 100\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }},
		{"threshold above one", func(c *Config) { c.Similarity.Threshold = 1.5 }},
		{"soft threshold above max", func(c *Config) { c.Cache.SoftThreshold = c.Cache.MaxEntries + 1 }},
		{"soft target not below threshold", func(c *Config) { c.Cache.SoftTarget = c.Cache.SoftThreshold }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad listen address", func(c *Config) { c.Server.Listen = "not a listen address" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestTunables(t *testing.T) {
	cfg := Default()
	cfg.Similarity.Threshold = 0.7
	cfg.Cache.SoftThreshold = 5000
	cfg.Cache.SoftTarget = 4000
	cfg.Cache.MaxQuestionLength = 750

	tun := cfg.Tunables()
	require.Equal(t, 0.7, tun.SimilarityThreshold)
	require.Equal(t, 5000, tun.SoftThreshold)
	require.Equal(t, 4000, tun.SoftTarget)
	require.Equal(t, 750, tun.MaxQuestionLength)
	require.Equal(t, cfg.Cache.MaxEntryAge, tun.MaxEntryAge)
}

func TestLogConfigBuild(t *testing.T) {
	l, err := LogConfig{Level: "warn", Format: "json"}.Build()
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zap.InfoLevel))
	require.True(t, l.Core().Enabled(zap.WarnLevel))

	_, err = LogConfig{Level: "nope"}.Build()
	require.Error(t, err)
}

func TestWatchReloadsValidAndIgnoresInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("similarity:\n  threshold: 0.6\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zap.NewNop(), func(c *Config) { got <- c })
	}()

	// The watcher registers asynchronously; keep rewriting until the
	// change is observed.
	deadline := time.After(3 * time.Second)
	var reloaded *Config
	for reloaded == nil {
		require.NoError(t, os.WriteFile(path, []byte("similarity:\n  threshold: 0.9\n"), 0o644))
		select {
		case reloaded = <-got:
		case <-deadline:
			t.Fatal("config change not observed")
		case <-time.After(250 * time.Millisecond):
		}
	}
	require.Equal(t, 0.9, reloaded.Similarity.Threshold)

	// Let pending debounces fire before the invalid phase.
	time.Sleep(500 * time.Millisecond)
	for {
		select {
		case <-got:
			continue
		default:
		}
		break
	}

	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: redis\n"), 0o644))
	select {
	case cfg := <-got:
		t.Fatalf("invalid config applied: %+v", cfg)
	case <-time.After(600 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
