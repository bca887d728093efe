// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package cache

import (
	"github.com/ChainSafe/triestore/lib/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the default number of entries of a shard cache.
const DefaultCapacity = 10000

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . Metrics

// Metrics observes the shard cache activity.
type Metrics interface {
	CacheHit()
	CacheMiss()
	CacheEvicted()
	CacheSizeSet(size int)
}

// ShardCache is a least recently used cache of trie nodes and values,
// keyed by the hash of their encoding. It is shared by all the storage
// sessions of one shard and is safe for concurrent use.
// Byte slices given to and returned by the cache must not be modified.
type ShardCache struct {
	lru      *lru.Cache[common.Hash, []byte]
	capacity int
	metrics  Metrics
}

// Option configures a ShardCache.
type Option func(c *ShardCache)

// WithMetrics sets the metrics observer of the cache.
func WithMetrics(metrics Metrics) Option {
	return func(c *ShardCache) {
		c.metrics = metrics
	}
}

// New creates a new shard cache holding at most capacity entries.
// A zero capacity selects DefaultCapacity.
func New(capacity uint, options ...Option) *ShardCache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	lruCache, err := lru.New[common.Hash, []byte](int(capacity))
	if err != nil {
		// only returned for a non positive size
		panic(err)
	}

	c := &ShardCache{
		lru:      lruCache,
		capacity: int(capacity),
		metrics:  noopMetrics{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Get returns the value cached for the hash and marks it as
// the most recently used entry. A miss returns false.
func (c *ShardCache) Get(hash common.Hash) (value []byte, ok bool) {
	value, ok = c.lru.Get(hash)
	if ok {
		c.metrics.CacheHit()
	} else {
		c.metrics.CacheMiss()
	}
	return value, ok
}

// Contains returns true if the hash is cached, without
// changing its recency.
func (c *ShardCache) Contains(hash common.Hash) bool {
	return c.lru.Contains(hash)
}

// Put inserts or refreshes the value for the hash, evicting the least
// recently used entry if the cache is full. Callers must not assume
// the entry stays resident.
func (c *ShardCache) Put(hash common.Hash, value []byte) {
	evicted := c.lru.Add(hash, value)
	if evicted {
		c.metrics.CacheEvicted()
	}
	c.metrics.CacheSizeSet(c.lru.Len())
}

// Pop removes the hash from the cache, returning true if it was present.
func (c *ShardCache) Pop(hash common.Hash) (present bool) {
	present = c.lru.Remove(hash)
	if present {
		c.metrics.CacheSizeSet(c.lru.Len())
	}
	return present
}

// Len returns the number of entries in the cache.
func (c *ShardCache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries of the cache.
func (c *ShardCache) Capacity() int {
	return c.capacity
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()        {}
func (noopMetrics) CacheMiss()       {}
func (noopMetrics) CacheEvicted()    {}
func (noopMetrics) CacheSizeSet(int) {}
