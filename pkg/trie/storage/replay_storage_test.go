// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"testing"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ReplayStorage_Retrieve(t *testing.T) {
	t.Parallel()

	proof := PartialStorage{Nodes: [][]byte{{1}, {2}, {3}}}
	key := func(i int) common.Hash { return common.MustBlake2bHash(proof.Nodes[i]) }

	testCases := map[string]struct {
		options       []ReplayOption
		keys          []common.Hash
		missingAt     int
		expectedCount uint64
	}{
		"unlimited": {
			keys:          []common.Hash{key(0), key(1), key(2), key(0)},
			missingAt:     -1,
			expectedCount: 3,
		},
		"hash absent from proof": {
			keys:          []common.Hash{key(0), common.MustBlake2bHash([]byte{4})},
			missingAt:     1,
			expectedCount: 1,
		},
		"zero limit": {
			options:       []ReplayOption{WithServeLimit(0)},
			keys:          []common.Hash{key(0)},
			missingAt:     0,
			expectedCount: 0,
		},
		"limit reached by new hash": {
			options:       []ReplayOption{WithServeLimit(2)},
			keys:          []common.Hash{key(0), key(1), key(2)},
			missingAt:     2,
			expectedCount: 2,
		},
		"served hashes served again beyond limit": {
			options:       []ReplayOption{WithServeLimit(2)},
			keys:          []common.Hash{key(0), key(1), key(0), key(1), key(1)},
			missingAt:     -1,
			expectedCount: 2,
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			replay := NewReplayStorage(proof, testCase.options...)

			for i, hash := range testCase.keys {
				value, err := replay.Retrieve(hash)
				if i == testCase.missingAt {
					assert.ErrorIs(t, err, ErrNodeMissing)
					assert.Nil(t, value)
					break
				}
				require.NoError(t, err)
				assert.Equal(t, common.MustBlake2bHash(value), hash)
			}

			assert.Equal(t, testCase.expectedCount, replay.TouchedNodesCount())
		})
	}
}

func Test_ReplayStorage_exhaustedAfterLimit(t *testing.T) {
	t.Parallel()

	proof := PartialStorage{Nodes: [][]byte{{1}, {2}}}
	first := common.MustBlake2bHash(proof.Nodes[0])
	second := common.MustBlake2bHash(proof.Nodes[1])
	replay := NewReplayStorage(proof, WithServeLimit(1))

	_, err := replay.Retrieve(first)
	require.NoError(t, err)
	_, err = replay.Retrieve(first)
	require.NoError(t, err)

	_, err = replay.Retrieve(second)
	require.ErrorIs(t, err, ErrNodeMissing)

	// hashes served before the limit was exceeded are no longer served
	value, err := replay.Retrieve(first)
	assert.ErrorIs(t, err, ErrNodeMissing)
	assert.EqualError(t, err, "trie node missing: "+first.String()+": serve limit 1 exceeded")
	assert.Nil(t, value)
	assert.Equal(t, uint64(1), replay.TouchedNodesCount())
}

func Test_ReplayStorage_duplicateBlobs(t *testing.T) {
	t.Parallel()

	replay := NewReplayStorage(PartialStorage{Nodes: [][]byte{{1}, {1}}})

	assert.Equal(t, 1, replay.Len())
}

func Test_ReplayStorage_AsCachingStorage(t *testing.T) {
	t.Parallel()

	replay := NewReplayStorage(PartialStorage{})

	assert.PanicsWithValue(t, ErrNotCachingStorage, func() {
		replay.AsCachingStorage()
	})
}
