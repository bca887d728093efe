// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"
	"sync"

	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/internal/log"
	"github.com/ChainSafe/triestore/pkg/trie/cache"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "trie/storage"))

//go:generate mockgen -destination=mocks_test.go -package=$GOPACKAGE . Metrics,NodeReader
//go:generate mockgen -destination=cache_mocks_test.go -package=$GOPACKAGE -mock_names=Metrics=MockCacheMetrics github.com/ChainSafe/triestore/pkg/trie/cache Metrics

// Metrics observes the shard tries activity.
type Metrics interface {
	// ShardCacheMetrics returns the metrics of the shard cache of the shard.
	ShardCacheMetrics(shardUID ShardUID) cache.Metrics
	// ChangesApplied is called after changes are committed to the shard.
	ChangesApplied(shardUID ShardUID, writes, deletes int)
}

// Settings are the settings of the shard tries.
type Settings struct {
	// ShardCacheCapacity is the number of entries of each shard cache.
	ShardCacheCapacity uint
	// CachedValueSizeLimit is the size in bytes above which
	// values are not put in the shard caches.
	CachedValueSizeLimit int
	// CleanCacheSize is the size in bytes of the cache in front
	// of the database. Zero disables it.
	CleanCacheSize int
}

// DefaultSettings returns the default shard tries settings.
func DefaultSettings() Settings {
	return Settings{
		ShardCacheCapacity:   cache.DefaultCapacity,
		CachedValueSizeLimit: DefaultCachedValueSizeLimit,
	}
}

// Tries holds the content store and the shard cache of every shard.
// It creates the storage sessions of a shard and commits their changes.
type Tries struct {
	store    *Store
	settings Settings
	metrics  Metrics

	cachesMutex sync.Mutex
	caches      map[ShardUID]*cache.ShardCache

	// commitMutex serialises commits, which read reference counts
	// before writing them.
	commitMutex sync.Mutex
}

// TriesOption configures Tries.
type TriesOption func(t *Tries)

// WithMetrics sets the metrics observer of the tries and of the shard caches.
func WithMetrics(metrics Metrics) TriesOption {
	return func(t *Tries) {
		t.metrics = metrics
	}
}

// NewTries creates shard tries storing content in the database.
func NewTries(db database.Database, settings Settings, options ...TriesOption) *Tries {
	t := &Tries{
		store:    NewStore(db, WithCleanCache(settings.CleanCacheSize)),
		settings: settings,
		caches:   make(map[ShardUID]*cache.ShardCache),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// ShardCache returns the shard cache of the shard, creating it on first use.
func (t *Tries) ShardCache(shardUID ShardUID) *cache.ShardCache {
	t.cachesMutex.Lock()
	defer t.cachesMutex.Unlock()

	shardCache, ok := t.caches[shardUID]
	if ok {
		return shardCache
	}

	var cacheOptions []cache.Option
	if t.metrics != nil {
		cacheOptions = append(cacheOptions, cache.WithMetrics(t.metrics.ShardCacheMetrics(shardUID)))
	}
	shardCache = cache.New(t.settings.ShardCacheCapacity, cacheOptions...)
	t.caches[shardUID] = shardCache
	logger.Debugf("created cache for shard %s with capacity %d", shardUID, shardCache.Capacity())
	return shardCache
}

// NewCachingStorage creates a new storage session for the shard.
func (t *Tries) NewCachingStorage(shardUID ShardUID) *CachingStorage {
	var options []CachingOption
	if t.settings.CachedValueSizeLimit > 0 {
		options = append(options, WithCachedValueSizeLimit(t.settings.CachedValueSizeLimit))
	}
	return NewCachingStorage(t.store, t.ShardCache(shardUID), shardUID, options...)
}

// ApplyAll commits the changes to the shard atomically, and then updates
// the shard cache: deleted content is removed from it and written content
// small enough is put in it.
func (t *Tries) ApplyAll(changes *TrieChanges, shardUID ShardUID) error {
	t.commitMutex.Lock()
	ops, err := t.store.ApplyChanges(shardUID, changes)
	t.commitMutex.Unlock()
	if err != nil {
		return fmt.Errorf("applying changes to shard %s: %w", shardUID, err)
	}

	sizeLimit := t.settings.CachedValueSizeLimit
	if sizeLimit <= 0 {
		sizeLimit = DefaultCachedValueSizeLimit
	}

	shardCache := t.ShardCache(shardUID)
	var writes, deletes int
	for _, op := range ops {
		if op.Deleted {
			deletes++
			shardCache.Pop(op.Hash)
			continue
		}
		writes++
		if len(op.Value) <= sizeLimit {
			shardCache.Put(op.Hash, op.Value)
		}
	}

	if t.metrics != nil {
		t.metrics.ChangesApplied(shardUID, writes, deletes)
	}
	logger.Debugf("applied changes from root %s to root %s on shard %s: %d writes and %d deletes",
		changes.OldRoot.Short(), changes.NewRoot.Short(), shardUID, writes, deletes)
	return nil
}

// Store returns the content store.
func (t *Tries) Store() *Store {
	return t.store
}

// Settings returns the settings of the tries.
func (t *Tries) Settings() Settings {
	return t.settings
}
