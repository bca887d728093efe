// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
)

var (
	// ErrNodeMissing is returned when a hash cannot be resolved to bytes
	// through any path available to the storage.
	ErrNodeMissing = errors.New("trie node missing")
	// ErrNotCachingStorage is the panic value when the caching storage is
	// requested from a storage which only pretends to be one.
	ErrNotCachingStorage = errors.New("storage is not a caching storage")
	// ErrHashMismatch is returned when content does not hash to the
	// hash it is stored under.
	ErrHashMismatch = errors.New("content hash mismatch")
	// ErrValueEncoding is returned when a stored value cannot be decoded.
	ErrValueEncoding = errors.New("malformed stored value")
	// ErrTrailingBytes is returned when decoding leaves unread bytes.
	ErrTrailingBytes = errors.New("trailing bytes after decoding")
	// ErrTruncated is returned when the input ends before a length prefix.
	ErrTruncated = errors.New("input truncated")
	// ErrLengthTooLarge is returned when a decoded length prefix declares
	// more elements than the input can hold.
	ErrLengthTooLarge = errors.New("declared length exceeds input")
)

// InconsistentStateError is returned by the caching storage when a hash
// referenced by the trie is absent from the backing store. The trie never
// references content it did not write, so this signals a corrupted store
// or a bug in the caller.
type InconsistentStateError struct {
	ShardUID ShardUID
	Hash     common.Hash
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state in shard %s: %s: %s",
		e.ShardUID, ErrNodeMissing, e.Hash)
}

// Unwrap returns ErrNodeMissing so the error matches it with errors.Is.
func (e *InconsistentStateError) Unwrap() error {
	return ErrNodeMissing
}
