// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"
	"path/filepath"

	cfg "github.com/ChainSafe/triestore/config"
	"github.com/ChainSafe/triestore/internal/log"
	"github.com/ChainSafe/triestore/lib/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))

// app holds the state shared by the commands of one root command.
type app struct {
	viper  *viper.Viper
	config *cfg.Config
}

// parseConfig loads the config from the config file, if any, and the flags.
// The config file is the --config flag value or, if the flag is not set,
// the config file of the base path if it exists.
func (a *app) parseConfig(cmd *cobra.Command) (*cfg.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get --config: %s", err)
	}

	if configFile == "" {
		basePath := utils.ExpandDir(a.viper.GetString("base-path"))
		defaultConfigFile := filepath.Join(basePath, cfg.DefaultConfigFileName)
		if utils.PathExists(defaultConfigFile) {
			configFile = defaultConfigFile
		}
	}

	config, err := cfg.Load(a.viper, configFile)
	if err != nil {
		return nil, err
	}

	log.Patch(config.LogOptions()...)
	if configFile != "" {
		logger.Debugf("loaded config file %s", configFile)
	}
	return config, nil
}

// NewRootCommand creates the root command
func NewRootCommand() (*cobra.Command, error) {
	a := &app{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "triestore",
		Short: "Content addressed trie node store command-line interface",
		Long: `Triestore stores the nodes and values of merkle patricia tries
by hash, with reference counting, shard caches and storage proofs.
Usage:
	triestore init --base-path ~/.triestore
	triestore put --kv alice=1 --kv bob=2
	triestore get --root 0x... --key alice
	triestore prove --root 0x... --key alice --out alice.proof --compress
	triestore verify --root 0x... --key alice --proof alice.proof`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			a.config, err = a.parseConfig(cmd)
			return err
		},
	}

	err := a.addRootFlags(cmd)
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(
		a.newInitCommand(),
		a.newPutCommand(),
		a.newGetCommand(),
		a.newProveCommand(),
		a.newVerifyCommand(),
		a.newStatsCommand(),
	)

	return cmd, nil
}

// addRootFlags adds the persistent flags of the root command,
// with the default config values as flag defaults.
func (a *app) addRootFlags(cmd *cobra.Command) error {
	defaults := cfg.DefaultConfig()

	cmd.PersistentFlags().String("config", "", "Config file, defaults to config.toml in the base path if it exists")

	// Base Config
	if err := addStringFlagBindViper(cmd, a.viper, "base-path", defaults.BasePath,
		"Data directory", "base-path"); err != nil {
		return fmt.Errorf("failed to add --base-path flag: %s", err)
	}
	if err := addUint32FlagBindViper(cmd, a.viper, "shard-id", defaults.ShardID,
		"Shard to operate on", "shard-id"); err != nil {
		return fmt.Errorf("failed to add --shard-id flag: %s", err)
	}
	if err := addUint32FlagBindViper(cmd, a.viper, "shard-version", defaults.ShardVersion,
		"Shard layout version", "shard-version"); err != nil {
		return fmt.Errorf("failed to add --shard-version flag: %s", err)
	}

	// Log Config
	if err := addStringFlagBindViper(cmd, a.viper, "log", defaults.Log.Level,
		"Log level: trace, debug, info, warn, error or critical", "log.level"); err != nil {
		return fmt.Errorf("failed to add --log flag: %s", err)
	}
	if err := addStringFlagBindViper(cmd, a.viper, "log-format", defaults.Log.Format,
		"Log format: console or plain", "log.format"); err != nil {
		return fmt.Errorf("failed to add --log-format flag: %s", err)
	}
	if err := addBoolFlagBindViper(cmd, a.viper, "log-caller", defaults.Log.Caller,
		"Log the caller file and line", "log.caller"); err != nil {
		return fmt.Errorf("failed to add --log-caller flag: %s", err)
	}

	// Store Config
	if err := addStringFlagBindViper(cmd, a.viper, "backend", defaults.Store.Backend,
		"Database backend: pebble, leveldb, badger or memory", "store.backend"); err != nil {
		return fmt.Errorf("failed to add --backend flag: %s", err)
	}
	if err := addBoolFlagBindViper(cmd, a.viper, "in-memory", defaults.Store.InMemory,
		"Keep the database in memory", "store.in-memory"); err != nil {
		return fmt.Errorf("failed to add --in-memory flag: %s", err)
	}
	if err := addIntFlagBindViper(cmd, a.viper, "clean-cache-size", defaults.Store.CleanCacheSize,
		"Size in bytes of the store clean cache, 0 to disable it", "store.clean-cache-size"); err != nil {
		return fmt.Errorf("failed to add --clean-cache-size flag: %s", err)
	}

	// Cache Config
	if err := addUintFlagBindViper(cmd, a.viper, "shard-cache-capacity", defaults.Cache.ShardCacheCapacity,
		"Number of entries of each shard cache", "cache.shard-cache-capacity"); err != nil {
		return fmt.Errorf("failed to add --shard-cache-capacity flag: %s", err)
	}
	if err := addIntFlagBindViper(cmd, a.viper, "cached-value-size-limit", defaults.Cache.CachedValueSizeLimit,
		"Largest content in bytes kept in the shard cache", "cache.cached-value-size-limit"); err != nil {
		return fmt.Errorf("failed to add --cached-value-size-limit flag: %s", err)
	}

	// Metrics Config
	if err := addBoolFlagBindViper(cmd, a.viper, "metrics", defaults.Metrics.Enabled,
		"Serve prometheus metrics", "metrics.enabled"); err != nil {
		return fmt.Errorf("failed to add --metrics flag: %s", err)
	}
	if err := addStringFlagBindViper(cmd, a.viper, "metrics-address", defaults.Metrics.Address,
		"Listen address of the metrics server", "metrics.address"); err != nil {
		return fmt.Errorf("failed to add --metrics-address flag: %s", err)
	}
	if err := addDurationFlagBindViper(cmd, a.viper, "metrics-interval", defaults.Metrics.Interval,
		"Interval between two store statistics exports", "metrics.interval"); err != nil {
		return fmt.Errorf("failed to add --metrics-interval flag: %s", err)
	}

	// Pprof Config
	if err := addBoolFlagBindViper(cmd, a.viper, "pprof", defaults.Pprof.Enabled,
		"Serve the pprof profiling endpoints", "pprof.enabled"); err != nil {
		return fmt.Errorf("failed to add --pprof flag: %s", err)
	}
	if err := addStringFlagBindViper(cmd, a.viper, "pprof-address", defaults.Pprof.ListeningAddress,
		"Listening address of the pprof server", "pprof.listening-address"); err != nil {
		return fmt.Errorf("failed to add --pprof-address flag: %s", err)
	}
	if err := addIntFlagBindViper(cmd, a.viper, "pprof-block-rate", defaults.Pprof.BlockProfileRate,
		"Block profile rate, 0 to disable block profiling", "pprof.block-profile-rate"); err != nil {
		return fmt.Errorf("failed to add --pprof-block-rate flag: %s", err)
	}
	if err := addIntFlagBindViper(cmd, a.viper, "pprof-mutex-rate", defaults.Pprof.MutexProfileRate,
		"Mutex profile rate, 0 to disable mutex profiling", "pprof.mutex-profile-rate"); err != nil {
		return fmt.Errorf("failed to add --pprof-mutex-rate flag: %s", err)
	}

	// Proof Config
	if err := addUint64FlagBindViper(cmd, a.viper, "proof-max-size", defaults.Proof.MaxSize,
		"Largest proof in bytes read by verify, once decompressed", "proof.max-size"); err != nil {
		return fmt.Errorf("failed to add --proof-max-size flag: %s", err)
	}

	return nil
}
