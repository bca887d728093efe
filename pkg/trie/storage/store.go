// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/lib/common"
	"github.com/VictoriaMetrics/fastcache"
)

const refcountLength = 8

// StoreOp is a physical write on the store: Value holds the content
// and RC its new reference count, or Deleted is true.
type StoreOp struct {
	Hash    common.Hash
	Value   []byte
	RC      int64
	Deleted bool
}

// Store is the content store of the trie nodes and values of all shards.
// Keys are the shard identifier followed by the content hash, and values
// are the content followed by its little endian reference count.
type Store struct {
	db         database.Database
	cleanCache *fastcache.Cache
}

// StoreOption configures a Store.
type StoreOption func(s *Store)

// WithCleanCache puts a cache of at most maxBytes bytes in front of
// the database. A zero size disables it.
func WithCleanCache(maxBytes int) StoreOption {
	return func(s *Store) {
		if maxBytes <= 0 {
			s.cleanCache = nil
			return
		}
		s.cleanCache = fastcache.New(maxBytes)
	}
}

// NewStore creates a content store on top of the database.
func NewStore(db database.Database, options ...StoreOption) *Store {
	s := &Store{db: db}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Store) table(shardUID ShardUID) database.Table {
	return database.NewTable(s.db, shardUID.Bytes())
}

func cacheKey(shardUID ShardUID, hash common.Hash) []byte {
	key := make([]byte, 0, ShardUIDLength+common.HashLength)
	key = append(key, shardUID.Bytes()...)
	return append(key, hash[:]...)
}

// Get returns the content stored for the hash in the shard.
// Content absent or with a non positive reference count is reported
// with a false boolean.
func (s *Store) Get(shardUID ShardUID, hash common.Hash) (value []byte, ok bool, err error) {
	if s.cleanCache != nil {
		value, ok = s.cleanCache.HasGet(nil, cacheKey(shardUID, hash))
		if ok {
			return value, true, nil
		}
	}

	value, rc, err := s.getWithRC(s.table(shardUID), hash)
	if err != nil {
		return nil, false, err
	} else if rc <= 0 {
		return nil, false, nil
	}

	if s.cleanCache != nil {
		s.cleanCache.Set(cacheKey(shardUID, hash), value)
	}
	return value, true, nil
}

// RefCount returns the reference count stored for the hash in the shard,
// or zero if the hash is absent.
func (s *Store) RefCount(shardUID ShardUID, hash common.Hash) (int64, error) {
	_, rc, err := s.getWithRC(s.table(shardUID), hash)
	return rc, err
}

func (s *Store) getWithRC(table database.Table, hash common.Hash) (value []byte, rc int64, err error) {
	encoded, err := table.Get(hash[:])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("getting %s: %w", hash, err)
	}

	value, rc, err = decodeValueWithRC(encoded)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", hash, err)
	}
	return value, rc, nil
}

// WriteBatch writes the operations in a single atomic database batch.
func (s *Store) WriteBatch(shardUID ShardUID, ops []StoreOp) (err error) {
	batch := s.table(shardUID).NewBatch()
	defer func() {
		closeErr := batch.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing batch: %w", closeErr)
		}
	}()

	for _, op := range ops {
		if op.Deleted {
			err = batch.Del(op.Hash[:])
		} else {
			err = batch.Put(op.Hash[:], encodeValueWithRC(op.Value, op.RC))
		}
		if err != nil {
			return fmt.Errorf("writing %s to batch: %w", op.Hash, err)
		}
	}

	err = batch.Flush()
	if err != nil {
		return fmt.Errorf("flushing batch: %w", err)
	}

	if s.cleanCache != nil {
		for _, op := range ops {
			key := cacheKey(shardUID, op.Hash)
			if op.Deleted {
				s.cleanCache.Del(key)
			} else {
				s.cleanCache.Set(key, op.Value)
			}
		}
	}
	return nil
}

// ApplyChanges aggregates the trie changes and writes the resulting
// reference counts in one atomic batch. Content whose reference count
// drops to zero or below is deleted. It returns the operations written.
// Callers must not apply changes to the same shard concurrently.
func (s *Store) ApplyChanges(shardUID ShardUID, changes *TrieChanges) (ops []StoreOp, err error) {
	aggregated, err := AggregateChanges(changes)
	if err != nil {
		return nil, fmt.Errorf("aggregating changes: %w", err)
	}

	table := s.table(shardUID)
	ops = make([]StoreOp, 0, len(aggregated))
	for _, change := range aggregated {
		currentValue, currentRC, err := s.getWithRC(table, change.Hash)
		if err != nil {
			return nil, err
		}

		op := StoreOp{
			Hash:  change.Hash,
			Value: change.Value,
			RC:    currentRC + change.RC,
		}
		if op.Value == nil {
			op.Value = currentValue
		}

		if op.RC <= 0 {
			if currentRC <= 0 {
				// nothing stored to delete
				continue
			}
			op.Value = nil
			op.RC = 0
			op.Deleted = true
		} else if op.Value == nil {
			return nil, fmt.Errorf("%w: no value to store for %s", ErrNodeMissing, change.Hash)
		}

		ops = append(ops, op)
	}

	err = s.WriteBatch(shardUID, ops)
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// Len returns the number of entries with a positive reference count
// stored for the shard.
func (s *Store) Len(shardUID ShardUID) (n int, err error) {
	iter, err := s.table(shardUID).NewIterator()
	if err != nil {
		return 0, fmt.Errorf("creating iterator: %w", err)
	}
	defer iter.Release()

	for valid := iter.First(); valid; valid = iter.Next() {
		_, rc, err := decodeValueWithRC(iter.Value())
		if err != nil {
			return 0, fmt.Errorf("decoding value at key 0x%x: %w", iter.Key(), err)
		}
		if rc > 0 {
			n++
		}
	}
	return n, nil
}

// Database returns the database the store writes to.
func (s *Store) Database() database.Database {
	return s.db
}

func encodeValueWithRC(value []byte, rc int64) []byte {
	encoded := make([]byte, len(value)+refcountLength)
	copy(encoded, value)
	binary.LittleEndian.PutUint64(encoded[len(value):], uint64(rc))
	return encoded
}

func decodeValueWithRC(encoded []byte) (value []byte, rc int64, err error) {
	if len(encoded) < refcountLength {
		return nil, 0, fmt.Errorf("%w: %d bytes is shorter than the reference count",
			ErrValueEncoding, len(encoded))
	}
	split := len(encoded) - refcountLength
	rc = int64(binary.LittleEndian.Uint64(encoded[split:]))
	value = make([]byte, split)
	copy(value, encoded[:split])
	return value, rc, nil
}
