// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"github.com/ChainSafe/triestore/lib/common"
)

// Storage resolves trie node and value hashes to their encoding.
// It is implemented by exactly three types: CachingStorage,
// RecordingStorage and ReplayStorage.
type Storage interface {
	// Retrieve returns the bytes stored under the hash. The returned
	// slice must not be modified.
	Retrieve(hash common.Hash) ([]byte, error)
	// TouchedNodesCount returns the number of nodes touched so far,
	// as used for gas metering. It never decreases.
	TouchedNodesCount() uint64
	// AsCachingStorage returns the live caching storage backing
	// this storage. It panics if there is none.
	AsCachingStorage() *CachingStorage

	isStorage()
}

var (
	_ Storage = (*CachingStorage)(nil)
	_ Storage = (*RecordingStorage)(nil)
	_ Storage = (*ReplayStorage)(nil)
)

// CacheMode selects where the caching storage keeps retrieved content.
type CacheMode uint8

const (
	// ShardCaching keeps retrieved content in the shard cache
	// so that following executions on the shard can reuse it.
	ShardCaching CacheMode = iota
	// ChunkCaching keeps retrieved content in the chunk cache
	// so that following accesses in the session are free.
	ChunkCaching
)

func (m CacheMode) String() string {
	switch m {
	case ShardCaching:
		return "shard caching"
	case ChunkCaching:
		return "chunk caching"
	default:
		return "unknown"
	}
}
