// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/tidwall/btree"
)

var _ Database = (*memoryDB)(nil)

// memoryDB is an ordered in-memory database.
type memoryDB struct {
	mutex     sync.RWMutex
	keyValues btree.Map[string, []byte]
}

// NewMemory returns a new empty in-memory database.
func NewMemory() *memoryDB {
	return &memoryDB{}
}

func (m *memoryDB) Path() string {
	return ""
}

func (m *memoryDB) Get(key []byte) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.keyValues.Get(string(key))
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrNotFound, key)
	}
	return copyBytes(value), nil
}

func (m *memoryDB) Has(key []byte) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.keyValues.Get(string(key))
	return ok, nil
}

// Put sets a value at the given key in the database.
// The value byte slice is deep copied to avoid any mutation surprises.
func (m *memoryDB) Put(key, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.keyValues.Set(string(key), copyBytes(value))
	return nil
}

func (m *memoryDB) Del(key []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.keyValues.Delete(string(key))
	return nil
}

func (m *memoryDB) Close() error {
	return nil
}

func (m *memoryDB) NewBatch() Batch {
	return &memoryBatch{db: m}
}

func (m *memoryDB) NewIterator() (Iterator, error) {
	return m.NewPrefixIterator(nil)
}

// NewPrefixIterator iterates over a snapshot of the keys
// with the given prefix taken at creation time.
func (m *memoryDB) NewPrefixIterator(prefix []byte) (Iterator, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	iter := &memoryIterator{index: -1}
	m.keyValues.Ascend(string(prefix), func(key string, value []byte) bool {
		if !bytes.HasPrefix([]byte(key), prefix) {
			return false
		}
		iter.keys = append(iter.keys, []byte(key))
		iter.values = append(iter.values, copyBytes(value))
		return true
	})
	return iter, nil
}

func (m *memoryDB) Stats() (map[string]int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return map[string]int64{
		"keys.count": int64(m.keyValues.Len()),
	}, nil
}

var _ Batch = (*memoryBatch)(nil)

type memoryBatch struct {
	db  *memoryDB
	ops []batchOp
}

func (mb *memoryBatch) Put(key, value []byte) error {
	mb.ops = append(mb.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
	return nil
}

func (mb *memoryBatch) Del(key []byte) error {
	mb.ops = append(mb.ops, batchOp{key: copyBytes(key), delete: true})
	return nil
}

// Flush applies all the operations of the batch under a single lock.
func (mb *memoryBatch) Flush() error {
	mb.db.mutex.Lock()
	defer mb.db.mutex.Unlock()

	for _, op := range mb.ops {
		if op.delete {
			mb.db.keyValues.Delete(string(op.key))
			continue
		}
		mb.db.keyValues.Set(string(op.key), op.value)
	}
	return nil
}

func (mb *memoryBatch) ValueSize() int {
	return len(mb.ops)
}

func (mb *memoryBatch) Reset() {
	mb.ops = nil
}

func (mb *memoryBatch) Close() error {
	mb.ops = nil
	return nil
}

var _ Iterator = (*memoryIterator)(nil)

type memoryIterator struct {
	keys   [][]byte
	values [][]byte
	index  int
}

func (mi *memoryIterator) First() bool {
	mi.index = 0
	return mi.Valid()
}

func (mi *memoryIterator) Next() bool {
	mi.index++
	return mi.Valid()
}

func (mi *memoryIterator) Valid() bool {
	return mi.index >= 0 && mi.index < len(mi.keys)
}

func (mi *memoryIterator) Key() []byte {
	return mi.keys[mi.index]
}

func (mi *memoryIterator) Value() []byte {
	return mi.values[mi.index]
}

func (mi *memoryIterator) Release() {
	mi.keys = nil
	mi.values = nil
}
