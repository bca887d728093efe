// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"

	"github.com/ChainSafe/triestore/pkg/trie"
	"github.com/spf13/cobra"
)

func (a *app) newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up a key",
		Long: `The get command looks up a key in the trie at the given root and
prints its value and the number of trie nodes touched.
Usage:
	triestore get --root 0x... --key alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execGet(cmd)
		},
	}
	cmd.Flags().String("root", "", "State root to read from")
	cmd.Flags().String("key", "", "Key to look up")
	return cmd
}

// readFlags returns the parsed --root and --key flags.
func readFlags(cmd *cobra.Command) (rawRoot, rawKey string, err error) {
	rawRoot, err = cmd.Flags().GetString("root")
	if err != nil {
		return "", "", fmt.Errorf("failed to get --root: %s", err)
	}
	rawKey, err = cmd.Flags().GetString("key")
	if err != nil {
		return "", "", fmt.Errorf("failed to get --key: %s", err)
	}
	return rawRoot, rawKey, nil
}

func (a *app) execGet(cmd *cobra.Command) (err error) {
	rawRoot, rawKey, err := readFlags(cmd)
	if err != nil {
		return err
	}
	root, err := parseRoot(rawRoot)
	if err != nil {
		return err
	}
	key, err := parseKey(rawKey)
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

	t := trie.NewTrie(s.tries.NewCachingStorage(a.config.ShardUID()))
	value, ok, err := t.Get(root, key)
	if err != nil {
		return fmt.Errorf("getting key %s: %w", rawKey, err)
	}
	s.touched(t.TouchedNodesCount())

	printLookup(cmd, value, ok, t.TouchedNodesCount())
	return nil
}

func printLookup(cmd *cobra.Command, value []byte, ok bool, touched uint64) {
	out := cmd.OutOrStdout()
	if ok {
		fmt.Fprintf(out, "value: %s\n", formatBytes(value))
	} else {
		fmt.Fprintln(out, "value: not found")
	}
	fmt.Fprintf(out, "touched nodes: %d\n", touched)
}
