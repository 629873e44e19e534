package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/recall-ai/recall/pkg/cache"
	"github.com/recall-ai/recall/pkg/similarity"
)

// DefaultMaintenanceInterval is how often the serve command runs a
// maintenance pass when the config does not say otherwise.
const DefaultMaintenanceInterval = time.Minute

// Config holds all recall configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Cache       CacheConfig       `yaml:"cache"`
	Similarity  SimilarityConfig  `yaml:"similarity"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Save        SaveConfig        `yaml:"save"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// StoreConfig selects the snapshot driver and its location.
type StoreConfig struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=file sqlite memory"`
	Path   string `yaml:"path"`
}

// CacheConfig controls entry limits and eviction.
type CacheConfig struct {
	MaxEntries        int           `yaml:"max_entries" validate:"omitempty,gt=0"`
	SoftThreshold     int           `yaml:"soft_threshold" validate:"omitempty,gt=0,ltefield=MaxEntries"`
	SoftTarget        int           `yaml:"soft_target" validate:"omitempty,gt=0,ltfield=SoftThreshold"`
	MaxEntryAge       time.Duration `yaml:"max_entry_age"`
	MinAccessCount    int64         `yaml:"min_access_count"`
	HotPathSize       int           `yaml:"hot_path_size" validate:"omitempty,gt=0"`
	MaxQuestionLength int           `yaml:"max_question_length" validate:"omitempty,gt=0"`
}

// SimilarityConfig controls approximate matching.
type SimilarityConfig struct {
	Threshold      float64 `yaml:"threshold" validate:"omitempty,gt=0,lte=1"`
	MaxScanEntries int     `yaml:"max_scan_entries" validate:"omitempty,gt=0"`
	UseIndex       bool    `yaml:"use_index"`
}

// MaintenanceConfig controls the periodic maintenance pass.
type MaintenanceConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SaveConfig controls the snapshot save breaker.
type SaveConfig struct {
	BreakerThreshold int           `yaml:"breaker_threshold" validate:"omitempty,gt=0"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

// ServerConfig controls the HTTP facade.
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "file",
			Path:   "recall-cache.json",
		},
		Cache: CacheConfig{
			MaxEntries:        cache.DefaultMaxEntries,
			SoftThreshold:     cache.DefaultSoftThreshold,
			SoftTarget:        cache.DefaultSoftTarget,
			MaxEntryAge:       cache.DefaultMaxEntryAge,
			MinAccessCount:    cache.DefaultMinAccessCount,
			HotPathSize:       cache.DefaultHotPathSize,
			MaxQuestionLength: cache.DefaultMaxQuestionLength,
		},
		Similarity: SimilarityConfig{
			Threshold:      similarity.DefaultThreshold,
			MaxScanEntries: cache.DefaultMaxScanEntries,
		},
		Maintenance: MaintenanceConfig{
			Interval: DefaultMaintenanceInterval,
		},
		Save: SaveConfig{
			BreakerThreshold: cache.DefaultBreakerThreshold,
			BreakerCooldown:  cache.DefaultBreakerCooldown,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = validator.New()

// Load reads a YAML config file, expands environment variables, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints, including the eviction ordering
// soft_target < soft_threshold <= max_entries.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Tunables is the runtime-adjustable subset applied on config reload.
func (c *Config) Tunables() cache.Tunables {
	return cache.Tunables{
		SimilarityThreshold: c.Similarity.Threshold,
		MaxScanEntries:      c.Similarity.MaxScanEntries,
		SoftThreshold:       c.Cache.SoftThreshold,
		SoftTarget:          c.Cache.SoftTarget,
		MaxEntryAge:         c.Cache.MaxEntryAge,
		MinAccessCount:      c.Cache.MinAccessCount,
		MaxQuestionLength:   c.Cache.MaxQuestionLength,
	}
}

// Build constructs a zap logger per the log config.
func (l LogConfig) Build() (*zap.Logger, error) {
	var cfg zap.Config
	if l.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if l.Level != "" {
		lvl, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
