// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/cache"
)

// DefaultCachedValueSizeLimit is the maximum size in bytes of a value
// kept in the shard cache. Larger values are still served, but are
// read from the store every time they miss the chunk cache.
const DefaultCachedValueSizeLimit = 1000

// NodeReader reads the content stored for a shard by hash.
// Absent content is reported with a false boolean and a nil error.
type NodeReader interface {
	Get(shardUID ShardUID, hash common.Hash) (value []byte, ok bool, err error)
}

var _ NodeReader = (*Store)(nil)

// CachingStorage is the storage used when applying chunks on a node
// holding the state. It reads through a chunk cache, then the shard
// cache shared with other sessions, then the store.
//
// A CachingStorage belongs to one session and must not be used
// concurrently; the shard cache it reads from can be.
type CachingStorage struct {
	store      NodeReader
	shardCache *cache.ShardCache
	shardUID   ShardUID

	mode CacheMode
	// chunkCache holds every hash retrieved in chunk caching mode.
	// Entries are never evicted until the session ends.
	chunkCache map[common.Hash][]byte
	// touchedNodes counts retrievals which missed the chunk cache.
	touchedNodes uint64

	cachedValueSizeLimit int
}

// CachingOption configures a CachingStorage.
type CachingOption func(s *CachingStorage)

// WithCachedValueSizeLimit sets the size in bytes above which
// retrieved values are not put in the shard cache.
func WithCachedValueSizeLimit(limit int) CachingOption {
	return func(s *CachingStorage) {
		s.cachedValueSizeLimit = limit
	}
}

// NewCachingStorage creates a caching storage session for the shard,
// starting in ShardCaching mode with an empty chunk cache.
func NewCachingStorage(store NodeReader, shardCache *cache.ShardCache,
	shardUID ShardUID, options ...CachingOption) *CachingStorage {
	s := &CachingStorage{
		store:                store,
		shardCache:           shardCache,
		shardUID:             shardUID,
		mode:                 ShardCaching,
		chunkCache:           make(map[common.Hash][]byte),
		cachedValueSizeLimit: DefaultCachedValueSizeLimit,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (*CachingStorage) isStorage() {}

// Retrieve returns the content stored under the hash.
// Content already in the chunk cache is returned without being counted.
// Content absent from the store returns an *InconsistentStateError.
func (s *CachingStorage) Retrieve(hash common.Hash) ([]byte, error) {
	if value, ok := s.chunkCache[hash]; ok {
		return value, nil
	}

	s.touchedNodes++

	value, ok := s.shardCache.Get(hash)
	if !ok {
		var err error
		value, ok, err = s.store.Get(s.shardUID, hash)
		if err != nil {
			return nil, fmt.Errorf("getting node %s from store: %w", hash, err)
		} else if !ok {
			return nil, &InconsistentStateError{
				ShardUID: s.shardUID,
				Hash:     hash,
			}
		}
	}

	switch s.mode {
	case ShardCaching:
		if len(value) <= s.cachedValueSizeLimit {
			s.shardCache.Put(hash, value)
		}
	case ChunkCaching:
		s.chunkCache[hash] = value
	}

	return value, nil
}

// TouchedNodesCount returns the number of retrievals which missed
// the chunk cache since the session started.
func (s *CachingStorage) TouchedNodesCount() uint64 {
	return s.touchedNodes
}

// AsCachingStorage returns the storage itself.
func (s *CachingStorage) AsCachingStorage() *CachingStorage {
	return s
}

// SetMode changes the cache mode for the following retrievals.
// The chunk cache and the touched nodes count are left untouched.
func (s *CachingStorage) SetMode(mode CacheMode) {
	s.mode = mode
}

// Mode returns the current cache mode.
func (s *CachingStorage) Mode() CacheMode {
	return s.mode
}

// ChunkCacheLen returns the number of entries in the chunk cache.
func (s *CachingStorage) ChunkCacheLen() int {
	return len(s.chunkCache)
}

// ShardCache returns the shard cache the storage reads through.
func (s *CachingStorage) ShardCache() *cache.ShardCache {
	return s.shardCache
}

// ShardUID returns the shard the storage reads from.
func (s *CachingStorage) ShardUID() ShardUID {
	return s.shardUID
}
