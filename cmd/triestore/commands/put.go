// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"

	"github.com/ChainSafe/triestore/pkg/trie"
	"github.com/spf13/cobra"
)

func (a *app) newPutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Update a state root",
		Long: `The put command sets and deletes keys of the trie at the given
root, commits the changes and prints the new root.
Keys and values are 0x prefixed hex strings or raw strings.
Usage:
	triestore put --kv alice=1 --kv 0x0102=0xff
	triestore put --root 0x... --delete alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execPut(cmd)
		},
	}
	cmd.Flags().String("root", "", "State root to update, defaults to the empty root")
	cmd.Flags().StringSlice("kv", nil, "Key value pair to set, formatted as key=value")
	cmd.Flags().StringSlice("delete", nil, "Key to delete")
	return cmd
}

func (a *app) execPut(cmd *cobra.Command) (err error) {
	rawRoot, err := cmd.Flags().GetString("root")
	if err != nil {
		return fmt.Errorf("failed to get --root: %s", err)
	}
	keyValues, err := cmd.Flags().GetStringSlice("kv")
	if err != nil {
		return fmt.Errorf("failed to get --kv: %s", err)
	}
	deletedKeys, err := cmd.Flags().GetStringSlice("delete")
	if err != nil {
		return fmt.Errorf("failed to get --delete: %s", err)
	}

	root, err := parseRoot(rawRoot)
	if err != nil {
		return err
	}
	changes, err := parseChanges(keyValues, deletedKeys)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), a.config)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := s.close()
		if err == nil {
			err = closeErr
		}
	}()

	shardUID := a.config.ShardUID()
	t := trie.NewTrie(s.tries.NewCachingStorage(shardUID))
	trieChanges, err := t.Update(root, changes)
	if err != nil {
		return fmt.Errorf("updating trie: %w", err)
	}
	s.touched(t.TouchedNodesCount())

	err = s.tries.ApplyAll(trieChanges, shardUID)
	if err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}

	logger.Debugf("updated root %s to %s in shard %s",
		trieChanges.OldRoot, trieChanges.NewRoot, shardUID)
	fmt.Fprintln(cmd.OutOrStdout(), trieChanges.NewRoot)
	return nil
}
