// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/internal/log"
	"github.com/ChainSafe/triestore/internal/metrics"
	"github.com/ChainSafe/triestore/internal/pprof"
	"github.com/ChainSafe/triestore/lib/utils"
	"github.com/ChainSafe/triestore/pkg/trie/cache"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/spf13/viper"
)

const (
	// DefaultBasePath is the default directory of the store and config file
	DefaultBasePath = "~/.triestore"
	// DefaultConfigFileName is the name of the config file in the base path
	DefaultConfigFileName = "config.toml"
	// DefaultBackend is the default database backend
	DefaultBackend = database.BackendPebble
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default log format
	DefaultLogFormat = "console"
	// DefaultProofMaxSize is the default largest proof in bytes the
	// verifier reads, once decompressed
	DefaultProofMaxSize = 64 << 20
	// DefaultMetricsAddress is the default listen address of the metrics server
	DefaultMetricsAddress = "localhost:9876"
)

var (
	ErrBasePathEmpty     = errors.New("base path cannot be empty")
	ErrCacheCapacityZero = errors.New("shard cache capacity must be positive")
	ErrNegativeSize      = errors.New("size cannot be negative")
	ErrMetricsAddress    = errors.New("metrics address cannot be empty when metrics are enabled")
	ErrMetricsInterval   = errors.New("metrics interval must be positive")
	ErrPprofAddress      = errors.New("pprof listening address cannot be empty when pprof is enabled")
	ErrProofMaxSizeZero  = errors.New("proof max size must be positive")
)

// Config defines the configuration of the trie store
type Config struct {
	BaseConfig `mapstructure:",squash"`
	Log        *LogConfig     `mapstructure:"log"`
	Store      *StoreConfig   `mapstructure:"store"`
	Cache      *CacheConfig   `mapstructure:"cache"`
	Metrics    *MetricsConfig `mapstructure:"metrics"`
	Pprof      *PprofConfig   `mapstructure:"pprof"`
	Proof      *ProofConfig   `mapstructure:"proof"`
}

// BaseConfig is the base configuration
type BaseConfig struct {
	BasePath     string `mapstructure:"base-path"`
	ShardID      uint32 `mapstructure:"shard-id"`
	ShardVersion uint32 `mapstructure:"shard-version"`
}

// LogConfig is the configuration of the logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Caller bool   `mapstructure:"caller"`
}

// StoreConfig is the configuration of the content store
type StoreConfig struct {
	Backend        string `mapstructure:"backend"`
	InMemory       bool   `mapstructure:"in-memory"`
	CleanCacheSize int    `mapstructure:"clean-cache-size"`
}

// CacheConfig is the configuration of the shard caches
type CacheConfig struct {
	ShardCacheCapacity   uint `mapstructure:"shard-cache-capacity"`
	CachedValueSizeLimit int  `mapstructure:"cached-value-size-limit"`
}

// MetricsConfig is the configuration of the prometheus metrics
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Interval time.Duration `mapstructure:"interval"`
}

// PprofConfig is the configuration of the pprof server
type PprofConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	ListeningAddress string `mapstructure:"listening-address"`
	BlockProfileRate int    `mapstructure:"block-profile-rate"`
	MutexProfileRate int    `mapstructure:"mutex-profile-rate"`
}

// ProofConfig is the configuration of the proof files
type ProofConfig struct {
	MaxSize uint64 `mapstructure:"max-size"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseConfig: BaseConfig{
			BasePath: DefaultBasePath,
		},
		Log: &LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Store: &StoreConfig{
			Backend: string(DefaultBackend),
		},
		Cache: &CacheConfig{
			ShardCacheCapacity:   cache.DefaultCapacity,
			CachedValueSizeLimit: storage.DefaultCachedValueSizeLimit,
		},
		Metrics: &MetricsConfig{
			Address:  DefaultMetricsAddress,
			Interval: metrics.DefaultInterval,
		},
		Pprof: &PprofConfig{
			ListeningAddress: pprof.DefaultListeningAddress,
		},
		Proof: &ProofConfig{
			MaxSize: DefaultProofMaxSize,
		},
	}
}

// ValidateBasic performs basic validation on the config
func (c *Config) ValidateBasic() error {
	if c.BasePath == "" && !c.Store.InMemory {
		return ErrBasePathEmpty
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("invalid log format: %w", err)
	}

	if _, err := database.ParseBackend(c.Store.Backend); err != nil {
		return fmt.Errorf("invalid store backend: %w", err)
	}
	if c.Store.CleanCacheSize < 0 {
		return fmt.Errorf("clean cache size %d: %w", c.Store.CleanCacheSize, ErrNegativeSize)
	}

	if c.Cache.ShardCacheCapacity == 0 {
		return ErrCacheCapacityZero
	}
	if c.Cache.CachedValueSizeLimit < 0 {
		return fmt.Errorf("cached value size limit %d: %w", c.Cache.CachedValueSizeLimit, ErrNegativeSize)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return ErrMetricsAddress
		}
		if c.Metrics.Interval <= 0 {
			return ErrMetricsInterval
		}
	}

	if c.Pprof.Enabled && c.Pprof.ListeningAddress == "" {
		return ErrPprofAddress
	}

	if c.Proof.MaxSize == 0 {
		return ErrProofMaxSizeZero
	}

	return nil
}

// ShardUID returns the shard the commands operate on.
func (c *Config) ShardUID() storage.ShardUID {
	return storage.ShardUID{
		Version: c.ShardVersion,
		ShardID: c.ShardID,
	}
}

// DatabasePath returns the directory of the database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.BasePath, "db")
}

// TriesSettings returns the shard tries settings.
func (c *Config) TriesSettings() storage.Settings {
	return storage.Settings{
		ShardCacheCapacity:   c.Cache.ShardCacheCapacity,
		CachedValueSizeLimit: c.Cache.CachedValueSizeLimit,
		CleanCacheSize:       c.Store.CleanCacheSize,
	}
}

// IntervalConfig returns the interval config of the store statistics export.
func (c *Config) IntervalConfig() metrics.IntervalConfig {
	return metrics.IntervalConfig{
		Publish:  c.Metrics.Enabled,
		Interval: c.Metrics.Interval,
	}
}

// PprofSettings returns the settings of the pprof service.
func (c *Config) PprofSettings() pprof.Settings {
	return pprof.Settings{
		ListeningAddress: c.Pprof.ListeningAddress,
		BlockProfileRate: c.Pprof.BlockProfileRate,
		MutexProfileRate: c.Pprof.MutexProfileRate,
	}
}

// LogOptions returns the logger options of the config.
// It must only be called on a validated config.
func (c *Config) LogOptions() []log.Option {
	level, _ := log.ParseLevel(c.Log.Level)
	format, _ := log.ParseFormat(c.Log.Format)
	return []log.Option{
		log.SetLevel(level),
		log.SetFormat(format),
		log.SetCallerFile(c.Log.Caller),
		log.SetCallerLine(c.Log.Caller),
	}
}

// Load returns the default config overridden by the config file, if any,
// and by the flags and environment bound to the viper instance.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := DefaultConfig()
	err := v.Unmarshal(config)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.BasePath = utils.ExpandDir(config.BasePath)

	err = config.ValidateBasic()
	if err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return config, nil
}

// EnsureRoot creates the base path directory and writes the config
// to the default config file in it, if the file does not exist yet.
func EnsureRoot(basePath string, config *Config) error {
	err := os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}

	configFile := filepath.Join(basePath, DefaultConfigFileName)
	_, err = os.Stat(configFile)
	if err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	return WriteConfigFile(configFile, config)
}

// WriteConfigFile writes the config to the file, in the format
// given by the file extension.
func WriteConfigFile(path string, config *Config) error {
	v := viper.New()
	err := v.MergeConfigMap(config.toMap())
	if err != nil {
		return fmt.Errorf("setting config values: %w", err)
	}

	err = v.WriteConfigAs(path)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) toMap() map[string]any {
	return map[string]any{
		"base-path":     c.BasePath,
		"shard-id":      c.ShardID,
		"shard-version": c.ShardVersion,
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
			"caller": c.Log.Caller,
		},
		"store": map[string]any{
			"backend":          c.Store.Backend,
			"in-memory":        c.Store.InMemory,
			"clean-cache-size": c.Store.CleanCacheSize,
		},
		"cache": map[string]any{
			"shard-cache-capacity":    c.Cache.ShardCacheCapacity,
			"cached-value-size-limit": c.Cache.CachedValueSizeLimit,
		},
		"metrics": map[string]any{
			"enabled":  c.Metrics.Enabled,
			"address":  c.Metrics.Address,
			"interval": c.Metrics.Interval.String(),
		},
		"pprof": map[string]any{
			"enabled":            c.Pprof.Enabled,
			"listening-address":  c.Pprof.ListeningAddress,
			"block-profile-rate": c.Pprof.BlockProfileRate,
			"mutex-profile-rate": c.Pprof.MutexProfileRate,
		},
		"proof": map[string]any{
			"max-size": c.Proof.MaxSize,
		},
	}
}
