// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"testing"

	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/lib/common"
	"github.com/stretchr/testify/require"
)

func insertionsOf(values ...[]byte) []RefcountChange {
	insertions := make([]RefcountChange, len(values))
	for i, value := range values {
		insertions[i] = RefcountChange{
			Hash:  common.MustBlake2bHash(value),
			Value: value,
			RC:    1,
		}
	}
	return insertions
}

func newStoreWithValues(t *testing.T, shardUID ShardUID, values ...[]byte) *Store {
	t.Helper()

	store := NewStore(database.NewMemory())
	_, err := store.ApplyChanges(shardUID, &TrieChanges{
		Insertions: insertionsOf(values...),
	})
	require.NoError(t, err)
	return store
}
