// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
)

// ReplayStorage serves content from a partial storage only, and is used
// to validate chunks without holding the state.
type ReplayStorage struct {
	nodes  map[common.Hash][]byte
	served map[common.Hash]struct{}

	limited    bool
	serveLimit uint
	// exhausted is set once a retrieval went over the serve limit.
	exhausted bool
}

// ReplayOption configures a ReplayStorage.
type ReplayOption func(r *ReplayStorage)

// WithServeLimit limits the number of distinct hashes the storage serves.
// Hashes already served are served again until a retrieval goes over the
// limit, after which every retrieval fails.
func WithServeLimit(limit uint) ReplayOption {
	return func(r *ReplayStorage) {
		r.limited = true
		r.serveLimit = limit
	}
}

// NewReplayStorage creates a storage serving the content of the partial
// storage, keyed by the hash of each blob.
func NewReplayStorage(proof PartialStorage, options ...ReplayOption) *ReplayStorage {
	r := &ReplayStorage{
		nodes:  make(map[common.Hash][]byte, len(proof.Nodes)),
		served: make(map[common.Hash]struct{}),
	}
	for _, node := range proof.Nodes {
		r.nodes[common.MustBlake2bHash(node)] = node
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (*ReplayStorage) isStorage() {}

// Retrieve returns the content of the hash from the partial storage.
// It returns an error wrapping ErrNodeMissing if the hash is not in
// the partial storage, or if the serve limit was exceeded.
func (r *ReplayStorage) Retrieve(hash common.Hash) ([]byte, error) {
	if r.exhausted {
		return nil, fmt.Errorf("%w: %s: serve limit %d exceeded",
			ErrNodeMissing, hash, r.serveLimit)
	}

	value, ok := r.nodes[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeMissing, hash)
	}

	if _, served := r.served[hash]; served {
		return value, nil
	}

	if r.limited && uint(len(r.served)) >= r.serveLimit {
		r.exhausted = true
		return nil, fmt.Errorf("%w: %s: serve limit %d reached",
			ErrNodeMissing, hash, r.serveLimit)
	}

	r.served[hash] = struct{}{}
	return value, nil
}

// TouchedNodesCount returns the number of distinct hashes served.
func (r *ReplayStorage) TouchedNodesCount() uint64 {
	return uint64(len(r.served))
}

// AsCachingStorage panics with ErrNotCachingStorage since a replay
// storage has no live state behind it.
func (*ReplayStorage) AsCachingStorage() *CachingStorage {
	panic(ErrNotCachingStorage)
}

// Len returns the number of distinct blobs the storage can serve.
func (r *ReplayStorage) Len() int {
	return len(r.nodes)
}
