// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/ChainSafe/triestore/pkg/trie/node"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
)

// EmptyRoot is the root hash of a trie without entries.
var EmptyRoot = common.EmptyHash

// Trie reads and updates Merkle-Patricia tries whose nodes and values
// are resolved through a storage. The root is given to each operation.
// A Trie is not safe for concurrent use, like its storage.
type Trie struct {
	storage storage.Storage
}

// NewTrie returns a trie reading through the given storage.
func NewTrie(s storage.Storage) *Trie {
	return &Trie{storage: s}
}

// Storage returns the storage of the trie.
func (t *Trie) Storage() storage.Storage {
	return t.storage
}

// RecordingReads returns a trie reading through the storage of t
// and recording every node and value it reads.
func (t *Trie) RecordingReads() *Trie {
	return &Trie{storage: storage.NewRecordingStorage(t.storage)}
}

// RecordedStorage returns the nodes and values recorded so far.
// It returns false if the trie was not created with RecordingReads.
func (t *Trie) RecordedStorage() (partial storage.PartialStorage, ok bool) {
	recording, ok := t.storage.(*storage.RecordingStorage)
	if !ok {
		return partial, false
	}
	return recording.RecordedStorage(), true
}

// TouchedNodesCount returns the touched nodes count of the storage.
func (t *Trie) TouchedNodesCount() uint64 {
	return t.storage.TouchedNodesCount()
}

// Get returns the value stored for the key in the trie with the given root.
// It returns false if the key is not in the trie.
func (t *Trie) Get(root common.Hash, key []byte) (value []byte, ok bool, err error) {
	ref, err := t.lookup(root, nibbles.FromKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("looking up key 0x%x: %w", key, err)
	} else if ref == nil {
		return nil, false, nil
	}

	value, err = t.retrieveValue(*ref)
	if err != nil {
		return nil, false, fmt.Errorf("getting value of key 0x%x: %w", key, err)
	}
	return value, true, nil
}

// Contains returns true if the key is in the trie with the given root.
// The value itself is not retrieved.
func (t *Trie) Contains(root common.Hash, key []byte) (bool, error) {
	ref, err := t.lookup(root, nibbles.FromKey(key))
	if err != nil {
		return false, fmt.Errorf("looking up key 0x%x: %w", key, err)
	}
	return ref != nil, nil
}

func (t *Trie) lookup(root common.Hash, key []byte) (ref *node.ValueRef, err error) {
	if root == EmptyRoot {
		return nil, nil //nolint:nilnil
	}

	hash := root
	for {
		n, err := t.retrieveNode(hash)
		if err != nil {
			return nil, err
		}

		switch n.Kind {
		case node.Leaf:
			if !bytes.Equal(key, n.PartialKey) {
				return nil, nil //nolint:nilnil
			}
			return n.Value, nil
		case node.Extension:
			if !nibbles.HasPrefix(key, n.PartialKey) {
				return nil, nil //nolint:nilnil
			}
			key = key[len(n.PartialKey):]
			hash = n.Child
		case node.Branch, node.BranchWithValue:
			if len(key) == 0 {
				return n.Value, nil
			}
			child := n.Children[key[0]]
			if child == nil {
				return nil, nil //nolint:nilnil
			}
			key = key[1:]
			hash = *child
		}
	}
}

func (t *Trie) retrieveNode(hash common.Hash) (*node.Node, error) {
	encoding, err := t.storage.Retrieve(hash)
	if err != nil {
		return nil, err
	}

	n, err := node.Decode(encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding node %s: %w", hash, err)
	}
	return n, nil
}

func (t *Trie) retrieveValue(ref node.ValueRef) ([]byte, error) {
	value, err := t.storage.Retrieve(ref.Hash)
	if err != nil {
		return nil, err
	}
	if uint32(len(value)) != ref.Length {
		return nil, fmt.Errorf("%w: value %s has length %d instead of %d",
			ErrValueLength, ref.Hash, len(value), ref.Length)
	}
	return value, nil
}
