// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"bytes"
)

type table struct {
	db     Database
	prefix []byte
}

var _ Table = (*table)(nil)

// NewTable returns a view of the database where
// every key is transparently prefixed with prefix.
func NewTable(db Database, prefix []byte) Table {
	return &table{
		db:     db,
		prefix: copyBytes(prefix),
	}
}

func (t *table) prefixed(key []byte) []byte {
	return bytes.Join([][]byte{t.prefix, key}, nil)
}

func (t *table) Path() string {
	return string(t.prefix)
}

func (t *table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.prefixed(key))
}

func (t *table) Has(key []byte) (bool, error) {
	return t.db.Has(t.prefixed(key))
}

func (t *table) Put(key, value []byte) error {
	return t.db.Put(t.prefixed(key), value)
}

func (t *table) Del(key []byte) error {
	return t.db.Del(t.prefixed(key))
}

func (t *table) NewBatch() Batch {
	return &tableBatch{
		batch:  t.db.NewBatch(),
		prefix: t.prefix,
	}
}

// NewIterator iterates over the table entries,
// with keys returned without the table prefix.
func (t *table) NewIterator() (Iterator, error) {
	iter, err := t.db.NewPrefixIterator(t.prefix)
	if err != nil {
		return nil, err
	}
	return &tableIterator{Iterator: iter, prefixLength: len(t.prefix)}, nil
}

var _ Batch = (*tableBatch)(nil)

type tableBatch struct {
	batch  Batch
	prefix []byte
}

func (tb *tableBatch) Put(key, value []byte) error {
	return tb.batch.Put(bytes.Join([][]byte{tb.prefix, key}, nil), value)
}

func (tb *tableBatch) Del(key []byte) error {
	return tb.batch.Del(bytes.Join([][]byte{tb.prefix, key}, nil))
}

func (tb *tableBatch) Flush() error {
	return tb.batch.Flush()
}

func (tb *tableBatch) ValueSize() int {
	return tb.batch.ValueSize()
}

func (tb *tableBatch) Reset() {
	tb.batch.Reset()
}

func (tb *tableBatch) Close() error {
	return tb.batch.Close()
}

type tableIterator struct {
	Iterator
	prefixLength int
}

func (ti *tableIterator) Key() []byte {
	return ti.Iterator.Key()[ti.prefixLength:]
}
