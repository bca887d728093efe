// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/ChainSafe/triestore/internal/log"
)

var logger = log.NewFromGlobal(log.AddContext("internal", "database"))

// ErrNotFound is returned, wrapped, when a key is not present in the database.
var ErrNotFound = errors.New("not found")

// ErrBackendUnknown is returned by New for an unsupported backend.
var ErrBackendUnknown = errors.New("database backend is unknown")

type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

type Writer interface {
	Put(key, value []byte) error
	Del(key []byte) error
}

// Iterator iterates over key/value pairs in ascending key order.
// Must be released after use.
type Iterator interface {
	First() bool
	Next() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Release()
}

// Batch is a write-only operation applied atomically on Flush.
type Batch interface {
	io.Closer
	Writer

	Flush() error
	ValueSize() int
	Reset()
}

// Database wraps all database operations. All methods are safe for concurrent use.
type Database interface {
	Reader
	Writer
	io.Closer

	Path() string
	NewBatch() Batch
	NewIterator() (Iterator, error)
	NewPrefixIterator(prefix []byte) (Iterator, error)
	// Stats returns backend specific statistics keyed by name.
	Stats() (map[string]int64, error)
}

type Table interface {
	Reader
	Writer
	Path() string
	NewBatch() Batch
	NewIterator() (Iterator, error)
}

// Backend is the name of a key value store implementation.
type Backend string

const (
	// BackendPebble uses cockroachdb pebble.
	BackendPebble Backend = "pebble"
	// BackendLevelDB uses goleveldb.
	BackendLevelDB Backend = "leveldb"
	// BackendBadger uses badger v4.
	BackendBadger Backend = "badger"
	// BackendMemory uses an ordered in-memory map.
	BackendMemory Backend = "memory"
)

// ParseBackend returns the backend of the given name.
func ParseBackend(s string) (Backend, error) {
	switch backend := Backend(s); backend {
	case BackendPebble, BackendLevelDB, BackendBadger, BackendMemory:
		return backend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBackendUnknown, s)
	}
}

// New opens a database of the given backend at path.
// If inMemory is true, nothing is written to disk and path is ignored.
func New(backend Backend, path string, inMemory bool) (db Database, err error) {
	switch backend {
	case BackendPebble:
		db, err = NewPebble(path, inMemory)
	case BackendLevelDB:
		db, err = NewLevelDB(path, inMemory)
	case BackendBadger:
		db, err = NewBadger(path, inMemory)
	case BackendMemory:
		db = NewMemory()
	default:
		return nil, fmt.Errorf("%w: %q", ErrBackendUnknown, backend)
	}

	if err != nil {
		return nil, err
	}

	logger.Debugf("opened %s database (in memory: %t) at %q", backend, inMemory, path)
	return db, nil
}

// keyUpperBound returns the smallest key greater than
// all keys with the given prefix, or nil if there is none.
func keyUpperBound(b []byte) []byte {
	end := make([]byte, len(b))
	copy(end, b)

	for i := len(end) - 1; i >= 0; i-- {
		end[i] = end[i] + 1
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	copied := make([]byte, len(b))
	copy(copied, b)
	return copied
}
