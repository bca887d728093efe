// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"
	"path/filepath"

	cfg "github.com/ChainSafe/triestore/config"
	"github.com/spf13/cobra"
)

func (a *app) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialise the base path",
		Long: `The init command creates the base path and writes the current
config to its config.toml file.
Usage:
	triestore init --base-path ~/.triestore --backend leveldb
	triestore init --base-path ~/.triestore --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execInit(cmd)
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func (a *app) execInit(cmd *cobra.Command) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get --force: %s", err)
	}

	configFile := filepath.Join(a.config.BasePath, cfg.DefaultConfigFileName)
	if force {
		err = cfg.WriteConfigFile(configFile, a.config)
	} else {
		err = cfg.EnsureRoot(a.config.BasePath, a.config)
	}
	if err != nil {
		return err
	}

	logger.Infof("initialised base path %s", a.config.BasePath)
	fmt.Fprintln(cmd.OutOrStdout(), configFile)
	return nil
}
