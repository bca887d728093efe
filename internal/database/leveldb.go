// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ Database = (*levelDB)(nil)

type levelDB struct {
	path string
	db   *leveldb.DB
}

// NewLevelDB opens a goleveldb database at the given path,
// or a purely in-memory one if inMemory is true.
func NewLevelDB(path string, inMemory bool) (*levelDB, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if inMemory {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	return &levelDB{path: path, db: db}, nil
}

func (l *levelDB) Path() string {
	return l.path
}

func (l *levelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%w: 0x%x", ErrNotFound, key)
		}
		return nil, fmt.Errorf("getting 0x%x from database: %w", key, err)
	}
	return value, nil
}

func (l *levelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *levelDB) Put(key, value []byte) error {
	err := l.db.Put(key, value, nil)
	if err != nil {
		return fmt.Errorf("writing 0x%x to database: %w", key, err)
	}
	return nil
}

func (l *levelDB) Del(key []byte) error {
	err := l.db.Delete(key, nil)
	if err != nil {
		return fmt.Errorf("deleting 0x%x from database: %w", key, err)
	}
	return nil
}

func (l *levelDB) Close() error {
	return l.db.Close()
}

func (l *levelDB) NewBatch() Batch {
	return &levelDBBatch{
		db:    l.db,
		batch: new(leveldb.Batch),
	}
}

func (l *levelDB) NewIterator() (Iterator, error) {
	return &levelDBIterator{l.db.NewIterator(nil, nil)}, nil
}

func (l *levelDB) NewPrefixIterator(prefix []byte) (Iterator, error) {
	return &levelDBIterator{l.db.NewIterator(util.BytesPrefix(prefix), nil)}, nil
}

func (l *levelDB) Stats() (map[string]int64, error) {
	var stats leveldb.DBStats
	err := l.db.Stats(&stats)
	if err != nil {
		return nil, fmt.Errorf("getting leveldb stats: %w", err)
	}

	return map[string]int64{
		"io.read":             int64(stats.IORead),
		"io.write":            int64(stats.IOWrite),
		"block-cache.size":    int64(stats.BlockCacheSize),
		"tables.opened":       int64(stats.OpenedTablesCount),
		"iterators.alive":     int64(stats.AliveIterators),
		"snapshots.alive":     int64(stats.AliveSnapshots),
		"write-delay.count":   int64(stats.WriteDelayCount),
		"compaction.mem":      int64(stats.MemComp),
		"compaction.level0":   int64(stats.Level0Comp),
		"compaction.nonlevel": int64(stats.NonLevel0Comp),
	}, nil
}

var _ Batch = (*levelDBBatch)(nil)

type levelDBBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelDBBatch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelDBBatch) Del(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelDBBatch) Flush() error {
	err := b.db.Write(b.batch, nil)
	if err != nil {
		return fmt.Errorf("writing batch: %w", err)
	}
	return nil
}

func (b *levelDBBatch) ValueSize() int {
	return b.batch.Len()
}

func (b *levelDBBatch) Reset() {
	b.batch.Reset()
}

func (b *levelDBBatch) Close() error {
	b.batch.Reset()
	return nil
}

var _ Iterator = (*levelDBIterator)(nil)

type levelDBIterator struct {
	iterator.Iterator
}

func (it *levelDBIterator) Release() {
	it.Iterator.Release()
	if err := it.Error(); err != nil {
		logger.Criticalf("while releasing iterator: %s", err)
	}
}
