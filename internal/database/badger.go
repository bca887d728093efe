// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

var _ Database = (*badgerDB)(nil)

type badgerDB struct {
	path string
	db   *badger.DB
}

// NewBadger opens a badger database at the given path,
// or a purely in-memory one if inMemory is true.
func NewBadger(path string, inMemory bool) (*badgerDB, error) {
	badgerPath := path
	if inMemory {
		badgerPath = ""
	}

	options := badger.DefaultOptions(badgerPath).
		WithInMemory(inMemory).
		WithLogger(nil)

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}

	return &badgerDB{path: path, db: db}, nil
}

func (b *badgerDB) Path() string {
	return b.path
}

// Get retrieves a value from the database using the given key.
// It returns the wrapped error `ErrNotFound` if the key is not found.
func (b *badgerDB) Get(key []byte) (value []byte, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("copying value: %w", err)
		}
		return nil
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: 0x%x", ErrNotFound, key)
	} else if err != nil {
		return nil, fmt.Errorf("getting 0x%x from database: %w", key, err)
	}

	return value, nil
}

func (b *badgerDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (b *badgerDB) Put(key, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(copyBytes(key), copyBytes(value))
	})
	if err != nil {
		return fmt.Errorf("writing 0x%x to database: %w", key, err)
	}
	return nil
}

func (b *badgerDB) Del(key []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(copyBytes(key))
	})
	if err != nil {
		return fmt.Errorf("deleting 0x%x from database: %w", key, err)
	}
	return nil
}

func (b *badgerDB) Close() error {
	return b.db.Close()
}

func (b *badgerDB) NewBatch() Batch {
	return &badgerBatch{db: b.db}
}

func (b *badgerDB) NewIterator() (Iterator, error) {
	return b.NewPrefixIterator(nil)
}

func (b *badgerDB) NewPrefixIterator(prefix []byte) (Iterator, error) {
	txn := b.db.NewTransaction(false)
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	return &badgerIterator{
		txn:    txn,
		iter:   txn.NewIterator(options),
		prefix: prefix,
	}, nil
}

func (b *badgerDB) Stats() (map[string]int64, error) {
	lsmSize, vlogSize := b.db.Size()
	return map[string]int64{
		"lsm.size":     lsmSize,
		"vlog.size":    vlogSize,
		"tables.count": int64(len(b.db.Tables())),
	}, nil
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

var _ Batch = (*badgerBatch)(nil)

// badgerBatch buffers operations and applies them in a single
// read-write transaction so the batch is atomic.
type badgerBatch struct {
	db  *badger.DB
	ops []batchOp
}

func (bb *badgerBatch) Put(key, value []byte) error {
	bb.ops = append(bb.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
	return nil
}

func (bb *badgerBatch) Del(key []byte) error {
	bb.ops = append(bb.ops, batchOp{key: copyBytes(key), delete: true})
	return nil
}

func (bb *badgerBatch) Flush() error {
	err := bb.db.Update(func(txn *badger.Txn) error {
		for _, op := range bb.ops {
			var err error
			if op.delete {
				err = txn.Delete(op.key)
			} else {
				err = txn.Set(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

func (bb *badgerBatch) ValueSize() int {
	return len(bb.ops)
}

func (bb *badgerBatch) Reset() {
	bb.ops = nil
}

func (bb *badgerBatch) Close() error {
	bb.ops = nil
	return nil
}

var _ Iterator = (*badgerIterator)(nil)

type badgerIterator struct {
	txn    *badger.Txn
	iter   *badger.Iterator
	prefix []byte
}

func (bi *badgerIterator) First() bool {
	bi.iter.Rewind()
	return bi.Valid()
}

func (bi *badgerIterator) Next() bool {
	bi.iter.Next()
	return bi.Valid()
}

func (bi *badgerIterator) Valid() bool {
	return bi.iter.ValidForPrefix(bi.prefix)
}

func (bi *badgerIterator) Key() []byte {
	return bi.iter.Item().KeyCopy(nil)
}

func (bi *badgerIterator) Value() []byte {
	value, err := bi.iter.Item().ValueCopy(nil)
	if err != nil {
		logger.Errorf("copying iterator value: %s", err)
		return nil
	}
	return value
}

func (bi *badgerIterator) Release() {
	bi.iter.Close()
	bi.txn.Discard()
}
