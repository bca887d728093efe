// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

var _ Database = (*pebbleDB)(nil)

type pebbleDB struct {
	path string
	db   *pebble.DB
}

// NewPebble opens a pebble database at the given path,
// or a purely in-memory one if inMemory is true.
func NewPebble(path string, inMemory bool) (*pebbleDB, error) {
	opts := &pebble.Options{}
	if inMemory {
		opts = &pebble.Options{FS: vfs.NewMem()}
	} else {
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			return nil, err
		}
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}

	return &pebbleDB{path, db}, nil
}

func (p *pebbleDB) Path() string {
	return p.path
}

func (p *pebbleDB) Put(key, value []byte) error {
	err := p.db.Set(key, value, pebble.Sync)
	if err != nil {
		return fmt.Errorf("writing 0x%x to database: %w", key, err)
	}
	return nil
}

func (p *pebbleDB) Get(key []byte) (value []byte, err error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: 0x%x", ErrNotFound, key)
		}
		return nil, fmt.Errorf("getting 0x%x from database: %w", key, err)
	}

	valueCpy := copyBytes(value)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("closing after get: %w", err)
	}

	return valueCpy, nil
}

func (p *pebbleDB) Has(key []byte) (exists bool, err error) {
	_, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := closer.Close(); err != nil {
		return false, fmt.Errorf("closing after get: %w", err)
	}

	return true, nil
}

func (p *pebbleDB) Del(key []byte) error {
	err := p.db.Delete(key, pebble.Sync)
	if err != nil {
		return fmt.Errorf("deleting 0x%x from database: %w", key, err)
	}

	return nil
}

func (p *pebbleDB) Close() error {
	return p.db.Close()
}

func (p *pebbleDB) NewBatch() Batch {
	return &pebbleBatch{
		batch: p.db.NewBatch(),
	}
}

func (p *pebbleDB) NewIterator() (Iterator, error) {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating pebble iterator: %w", err)
	}
	return &pebbleIterator{iter}, nil
}

func (p *pebbleDB) NewPrefixIterator(prefix []byte) (Iterator, error) {
	prefixIterOptions := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	}

	iter, err := p.db.NewIter(prefixIterOptions)
	if err != nil {
		return nil, fmt.Errorf("creating pebble prefix iterator: %w", err)
	}
	return &pebbleIterator{iter}, nil
}

func (p *pebbleDB) Stats() (map[string]int64, error) {
	metrics := p.db.Metrics()
	return map[string]int64{
		"block-cache.hits":   metrics.BlockCache.Hits,
		"block-cache.misses": metrics.BlockCache.Misses,
		"block-cache.size":   metrics.BlockCache.Size,
		"block-cache.count":  metrics.BlockCache.Count,
		"compact.count":      metrics.Compact.Count,
		"flush.count":        metrics.Flush.Count,
		"wal.files":          metrics.WAL.Files,
		"disk.usage":         int64(metrics.DiskSpaceUsage()),
	}, nil
}

var _ Batch = (*pebbleBatch)(nil)

type pebbleBatch struct {
	batch *pebble.Batch
}

func (pb *pebbleBatch) Put(key, value []byte) error {
	err := pb.batch.Set(key, value, nil)
	if err != nil {
		return fmt.Errorf("setting to batch writer: %w", err)
	}
	return nil
}

func (pb *pebbleBatch) Del(key []byte) error {
	err := pb.batch.Delete(key, nil)
	if err != nil {
		return fmt.Errorf("setting to batch delete: %w", err)
	}
	return nil
}

func (pb *pebbleBatch) Flush() error {
	err := pb.batch.Commit(pebble.Sync)
	if err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

func (pb *pebbleBatch) ValueSize() int {
	return int(pb.batch.Count())
}

func (pb *pebbleBatch) Reset() {
	pb.batch.Reset()
}

func (pb *pebbleBatch) Close() error {
	pb.batch.Reset()
	return nil
}

var _ Iterator = (*pebbleIterator)(nil)

type pebbleIterator struct {
	*pebble.Iterator
}

func (pi *pebbleIterator) Release() {
	err := pi.Close()
	if err != nil {
		logger.Criticalf("while closing iterator: %s", err)
	}
}
