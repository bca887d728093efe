// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"math/rand"
	"testing"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/stretchr/testify/require"
)

// commit updates the trie at root with the changes, commits them
// to the shard and returns the new root.
func commit(t *testing.T, tries *storage.Tries, shardUID storage.ShardUID,
	root common.Hash, changes []Change) common.Hash {
	t.Helper()

	trie := NewTrie(tries.NewCachingStorage(shardUID))
	trieChanges, err := trie.Update(root, changes)
	require.NoError(t, err)
	err = tries.ApplyAll(trieChanges, shardUID)
	require.NoError(t, err)
	return trieChanges.NewRoot
}

// generateChanges returns random changes with short keys made of few
// distinct bytes, so that keys share prefixes and values repeat.
func generateChanges(generator *rand.Rand) (changes []Change) {
	alphabet := []byte{0x00, 0x01, 0x10, 0x11, 0xff}
	size := 1 + generator.Intn(30)
	changes = make([]Change, size)
	for i := range changes {
		key := make([]byte, 1+generator.Intn(3))
		for j := range key {
			key[j] = alphabet[generator.Intn(len(alphabet))]
		}
		value := make([]byte, generator.Intn(4))
		for j := range value {
			value[j] = byte(generator.Intn(3))
		}
		changes[i] = Change{Key: key, Value: value}
	}
	return changes
}
