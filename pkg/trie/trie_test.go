// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"testing"

	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Trie_touchedNodes(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		changes          []Change
		expectedTouches  []uint64
		expectedCacheLen int
	}{
		"distinct values": {
			changes: []Change{
				{Key: nibbles.Encode([]byte{0, 0, 0}, false), Value: []byte{0}},
				{Key: nibbles.Encode([]byte{0, 1, 1}, false), Value: []byte{1}},
				{Key: nibbles.Encode([]byte{1, 0, 0}, false), Value: []byte{2}},
			},
			expectedTouches:  []uint64{5, 5, 4},
			expectedCacheLen: 9,
		},
		"shared value": {
			changes: []Change{
				{Key: nibbles.Encode([]byte{0, 0}, false), Value: []byte{1}},
				{Key: nibbles.Encode([]byte{1, 1}, false), Value: []byte{1}},
			},
			expectedTouches:  []uint64{4, 4},
			expectedCacheLen: 5,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			db := database.NewMemory()
			shardUID := storage.SingleShard()
			root := commit(t, storage.NewTries(db, storage.DefaultSettings()),
				shardUID, EmptyRoot, testCase.changes)

			// read with cold shard caches
			tries := storage.NewTries(db, storage.DefaultSettings())
			trie := NewTrie(tries.NewCachingStorage(shardUID))

			touches := make([]uint64, len(testCase.changes))
			for i, change := range testCase.changes {
				before := trie.TouchedNodesCount()
				value, ok, err := trie.Get(root, change.Key)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, change.Value, value)
				touches[i] = trie.TouchedNodesCount() - before
			}

			assert.Equal(t, testCase.expectedTouches, touches)
			assert.Equal(t, testCase.expectedCacheLen, tries.ShardCache(shardUID).Len())
			stored, err := tries.Store().Len(shardUID)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedCacheLen, stored)
		})
	}
}

func Test_Trie_sharedValueRefCount(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	value := []byte{1}
	root := commit(t, tries, shardUID, EmptyRoot, []Change{
		{Key: []byte{0x00, 0x00}, Value: value},
		{Key: []byte{0x00, 0x11}, Value: value},
	})

	valueHash := common.MustBlake2bHash(value)
	rc, err := tries.Store().RefCount(shardUID, valueHash)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rc)

	root = commit(t, tries, shardUID, root, []Change{{Key: []byte{0x00, 0x00}}})
	rc, err = tries.Store().RefCount(shardUID, valueHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rc)

	commit(t, tries, shardUID, root, []Change{{Key: []byte{0x00, 0x11}}})
	rc, err = tries.Store().RefCount(shardUID, valueHash)
	require.NoError(t, err)
	assert.Zero(t, rc)
}

func Test_Trie_Get(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	root := commit(t, tries, shardUID, EmptyRoot, []Change{
		{Key: []byte{0x12}, Value: []byte{1}},
		{Key: []byte{0x12, 0x34}, Value: []byte{2}},
		{Key: []byte{0x12, 0x35}, Value: []byte{}},
		{Key: []byte{0x56}, Value: []byte{4, 4, 4}},
	})

	testCases := map[string]struct {
		root  common.Hash
		key   []byte
		value []byte
		ok    bool
	}{
		"empty root": {
			root: EmptyRoot,
			key:  []byte{0x12},
		},
		"branch value": {
			root:  root,
			key:   []byte{0x12},
			value: []byte{1},
			ok:    true,
		},
		"leaf value": {
			root:  root,
			key:   []byte{0x12, 0x34},
			value: []byte{2},
			ok:    true,
		},
		"empty value": {
			root:  root,
			key:   []byte{0x12, 0x35},
			value: []byte{},
			ok:    true,
		},
		"absent below branch": {
			root: root,
			key:  []byte{0x12, 0x36},
		},
		"absent child of branch with value": {
			root: root,
			key:  []byte{0x12, 0x3},
		},
		"absent longer than leaf": {
			root: root,
			key:  []byte{0x56, 0x00},
		},
		"empty key": {
			root: root,
			key:  []byte{},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			trie := NewTrie(tries.NewCachingStorage(shardUID))
			value, ok, err := trie.Get(testCase.root, testCase.key)

			require.NoError(t, err)
			assert.Equal(t, testCase.ok, ok)
			assert.Equal(t, testCase.value, value)

			contains, err := trie.Contains(testCase.root, testCase.key)
			require.NoError(t, err)
			assert.Equal(t, testCase.ok, contains)
		})
	}
}

func Test_Trie_Get_missingRoot(t *testing.T) {
	t.Parallel()

	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	trie := NewTrie(tries.NewCachingStorage(storage.SingleShard()))

	_, _, err := trie.Get(common.MustBlake2bHash([]byte{1}), []byte{1})

	assert.ErrorIs(t, err, storage.ErrNodeMissing)
}

func Test_Trie_Update(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())

	root := commit(t, tries, shardUID, EmptyRoot, []Change{
		{Key: []byte{1}, Value: []byte{1}},
		{Key: []byte{2}, Value: []byte{2}},
		{Key: []byte{3}, Value: []byte{3}},
	})
	root = commit(t, tries, shardUID, root, []Change{
		{Key: []byte{2}},
		{Key: []byte{3}, Value: []byte{33}},
		{Key: []byte{4}, Value: []byte{4}},
		// deleting an absent key is a no-op
		{Key: []byte{5}},
	})

	trie := NewTrie(tries.NewCachingStorage(shardUID)).RecordingReads()
	entries, err := trie.Entries(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Key: []byte{1}, Value: []byte{1}},
		{Key: []byte{3}, Value: []byte{33}},
		{Key: []byte{4}, Value: []byte{4}},
	}, entries)

	// the store only holds the content of the latest trie
	proof, ok := trie.RecordedStorage()
	require.True(t, ok)
	stored, err := tries.Store().Len(shardUID)
	require.NoError(t, err)
	assert.Equal(t, proof.Len(), stored)

	root = commit(t, tries, shardUID, root, []Change{
		{Key: []byte{1}}, {Key: []byte{3}}, {Key: []byte{4}},
	})
	assert.Equal(t, EmptyRoot, root)
	stored, err = tries.Store().Len(shardUID)
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func Test_Trie_Update_deterministicRoot(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	changes := []Change{
		{Key: []byte{0xab}, Value: []byte{1}},
		{Key: []byte{0xac}, Value: []byte{2}},
		{Key: []byte{0x01, 0x02}, Value: []byte{3}},
	}

	all := commit(t, tries, shardUID, EmptyRoot, changes)
	oneByOne := EmptyRoot
	for i := len(changes) - 1; i >= 0; i-- {
		oneByOne = commit(t, tries, shardUID, oneByOne, changes[i:i+1])
	}

	assert.Equal(t, all, oneByOne)
}

func Test_Trie_Update_noChange(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	changes := []Change{{Key: []byte{1}, Value: []byte{1}}}
	root := commit(t, tries, shardUID, EmptyRoot, changes)

	trie := NewTrie(tries.NewCachingStorage(shardUID))
	trieChanges, err := trie.Update(root, changes)
	require.NoError(t, err)
	assert.Equal(t, root, trieChanges.NewRoot)

	aggregated, err := storage.AggregateChanges(trieChanges)
	require.NoError(t, err)
	assert.Empty(t, aggregated)
}

func Test_Trie_RecordedStorage_notRecording(t *testing.T) {
	t.Parallel()

	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	trie := NewTrie(tries.NewCachingStorage(storage.SingleShard()))

	_, ok := trie.RecordedStorage()

	assert.False(t, ok)
}

func Test_Trie_chunkCachingMode(t *testing.T) {
	t.Parallel()

	shardUID := storage.SingleShard()
	tries := storage.NewTries(database.NewMemory(), storage.DefaultSettings())
	key := []byte{0x12, 0x34}
	root := commit(t, tries, shardUID, EmptyRoot, []Change{
		{Key: key, Value: []byte{1}},
		{Key: []byte{0x12, 0x56}, Value: []byte{2}},
	})

	caching := tries.NewCachingStorage(shardUID)
	caching.SetMode(storage.ChunkCaching)
	trie := NewTrie(caching)

	_, _, err := trie.Get(root, key)
	require.NoError(t, err)
	touched := trie.TouchedNodesCount()
	require.NotZero(t, touched)

	_, _, err = trie.Get(root, key)
	require.NoError(t, err)
	assert.Equal(t, touched, trie.TouchedNodesCount())

	// content counted in chunk caching mode is never counted again
	caching.SetMode(storage.ShardCaching)
	_, _, err = trie.Get(root, key)
	require.NoError(t, err)
	assert.Equal(t, touched, trie.TouchedNodesCount())
}
