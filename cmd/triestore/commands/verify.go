// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"
	"os"

	"github.com/ChainSafe/triestore/pkg/trie"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/spf13/cobra"
)

func (a *app) newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay a lookup against a storage proof",
		Long: `The verify command looks up a key in the trie at the given root
using only the nodes of a proof file written by the prove command.
It fails if the proof is missing a node the lookup needs.
Usage:
	triestore verify --root 0x... --key alice --proof alice.proof`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execVerify(cmd)
		},
	}
	cmd.Flags().String("root", "", "State root the proof is for")
	cmd.Flags().String("key", "", "Key to look up")
	cmd.Flags().String("proof", "", "Proof file to read")
	cmd.Flags().Uint("serve-limit", 0, "Number of distinct nodes the proof may serve, 0 for no limit")
	return cmd
}

func (a *app) execVerify(cmd *cobra.Command) error {
	rawRoot, rawKey, err := readFlags(cmd)
	if err != nil {
		return err
	}
	proofPath, err := cmd.Flags().GetString("proof")
	if err != nil {
		return fmt.Errorf("failed to get --proof: %s", err)
	}
	if proofPath == "" {
		return ErrProofPathEmpty
	}
	serveLimit, err := cmd.Flags().GetUint("serve-limit")
	if err != nil {
		return fmt.Errorf("failed to get --serve-limit: %s", err)
	}

	root, err := parseRoot(rawRoot)
	if err != nil {
		return err
	}
	key, err := parseKey(rawKey)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(proofPath)
	if err != nil {
		return fmt.Errorf("reading proof: %w", err)
	}
	proof, err := decodeProof(data, a.config.Proof.MaxSize)
	if err != nil {
		return err
	}

	var options []storage.ReplayOption
	if serveLimit > 0 {
		options = append(options, storage.WithServeLimit(serveLimit))
	}

	t := trie.NewTrie(storage.NewReplayStorage(proof, options...))
	value, ok, err := t.Get(root, key)
	if err != nil {
		return fmt.Errorf("verifying key %s: %w", rawKey, err)
	}

	printLookup(cmd, value, ok, t.TouchedNodesCount())
	return nil
}
