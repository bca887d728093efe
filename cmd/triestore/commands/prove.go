// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/ChainSafe/triestore/pkg/trie"
	"github.com/spf13/cobra"
)

var ErrProofPathEmpty = errors.New("proof file path cannot be empty")

func (a *app) newProveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Write the storage proof of a lookup",
		Long: `The prove command looks up a key in the trie at the given root,
recording every node and value read, and writes the SCALE encoded
recording to a file. The proof also proves the absence of a key.
Usage:
	triestore prove --root 0x... --key alice --out alice.proof
	triestore prove --root 0x... --key alice --out alice.proof --compress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execProve(cmd)
		},
	}
	cmd.Flags().String("root", "", "State root to read from")
	cmd.Flags().String("key", "", "Key to look up")
	cmd.Flags().String("out", "", "Proof file to write")
	cmd.Flags().Bool("compress", false, "Compress the proof with zstd")
	return cmd
}

func (a *app) execProve(cmd *cobra.Command) (err error) {
	rawRoot, rawKey, err := readFlags(cmd)
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get --out: %s", err)
	}
	if out == "" {
		return ErrProofPathEmpty
	}
	compress, err := cmd.Flags().GetBool("compress")
	if err != nil {
		return fmt.Errorf("failed to get --compress: %s", err)
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

	t := trie.NewTrie(s.tries.NewCachingStorage(a.config.ShardUID())).RecordingReads()
	_, _, err = t.Get(root, key)
	if err != nil {
		return fmt.Errorf("getting key %s: %w", rawKey, err)
	}
	s.touched(t.TouchedNodesCount())

	proof, _ := t.RecordedStorage()
	data, err := encodeProof(proof, compress)
	if err != nil {
		return err
	}

	err = os.WriteFile(out, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing proof: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "proof of %d nodes written to %s\n", proof.Len(), out)
	return nil
}
