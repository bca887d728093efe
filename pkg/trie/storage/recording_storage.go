// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"github.com/ChainSafe/triestore/lib/common"
)

// RecordingStorage wraps a storage and records the content of every
// distinct hash successfully retrieved, in first retrieval order.
type RecordingStorage struct {
	storage  Storage
	recorded map[common.Hash]struct{}
	nodes    [][]byte
}

// NewRecordingStorage returns a recording storage wrapping the given storage.
func NewRecordingStorage(storage Storage) *RecordingStorage {
	return &RecordingStorage{
		storage:  storage,
		recorded: make(map[common.Hash]struct{}),
	}
}

func (*RecordingStorage) isStorage() {}

// Retrieve retrieves the content from the wrapped storage and records it
// if it was not recorded yet. Failed retrievals are not recorded.
func (r *RecordingStorage) Retrieve(hash common.Hash) ([]byte, error) {
	value, err := r.storage.Retrieve(hash)
	if err != nil {
		return nil, err
	}

	if _, ok := r.recorded[hash]; !ok {
		r.recorded[hash] = struct{}{}
		r.nodes = append(r.nodes, value)
	}
	return value, nil
}

// TouchedNodesCount returns the touched nodes count of the wrapped storage.
func (r *RecordingStorage) TouchedNodesCount() uint64 {
	return r.storage.TouchedNodesCount()
}

// AsCachingStorage returns the caching storage of the wrapped storage.
func (r *RecordingStorage) AsCachingStorage() *CachingStorage {
	return r.storage.AsCachingStorage()
}

// Storage returns the wrapped storage.
func (r *RecordingStorage) Storage() Storage {
	return r.storage
}

// RecordedStorage returns the content recorded so far as a partial storage.
// The recording continues and later calls return a longer partial storage.
func (r *RecordingStorage) RecordedStorage() PartialStorage {
	nodes := make([][]byte, len(r.nodes))
	copy(nodes, r.nodes)
	return PartialStorage{Nodes: nodes}
}
