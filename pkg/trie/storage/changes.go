// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ChainSafe/triestore/lib/common"
)

// RefcountChange is a reference count delta for the content of a hash.
// Value is nil for deletions.
type RefcountChange struct {
	Hash  common.Hash
	Value []byte
	RC    int64
}

// TrieChanges are the reference count changes produced by updating
// a trie from an old root to a new root. RC values of both insertions
// and deletions are positive; deletions are subtracted.
type TrieChanges struct {
	OldRoot    common.Hash
	NewRoot    common.Hash
	Insertions []RefcountChange
	Deletions  []RefcountChange
}

// Empty returns true if there is no change to apply.
func (c *TrieChanges) Empty() bool {
	return len(c.Insertions) == 0 && len(c.Deletions) == 0
}

// AggregateChanges groups the changes by hash and sums their deltas,
// counting insertions positively and deletions negatively.
// Hashes with a net zero delta are dropped. The result is sorted by hash.
// An insertion whose value does not hash to its hash returns ErrHashMismatch.
func AggregateChanges(changes *TrieChanges) ([]RefcountChange, error) {
	byHash := make(map[common.Hash]*RefcountChange,
		len(changes.Insertions)+len(changes.Deletions))

	add := func(change RefcountChange, sign int64) {
		aggregated, ok := byHash[change.Hash]
		if !ok {
			aggregated = &RefcountChange{Hash: change.Hash}
			byHash[change.Hash] = aggregated
		}
		aggregated.RC += sign * change.RC
		if aggregated.Value == nil && change.Value != nil {
			aggregated.Value = change.Value
		}
	}

	for _, insertion := range changes.Insertions {
		if common.MustBlake2bHash(insertion.Value) != insertion.Hash {
			return nil, fmt.Errorf("%w: value of %d bytes for hash %s",
				ErrHashMismatch, len(insertion.Value), insertion.Hash)
		}
		add(insertion, 1)
	}
	for _, deletion := range changes.Deletions {
		add(deletion, -1)
	}

	aggregated := make([]RefcountChange, 0, len(byHash))
	for _, change := range byHash {
		if change.RC == 0 {
			continue
		}
		aggregated = append(aggregated, *change)
	}

	sort.Slice(aggregated, func(i, j int) bool {
		return bytes.Compare(aggregated[i].Hash[:], aggregated[j].Hash[:]) < 0
	})
	return aggregated, nil
}
