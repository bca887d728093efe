// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/ChainSafe/triestore/pkg/trie/node"
)

// ErrStopIteration can be returned by an iteration callback to stop
// the iteration without error.
var ErrStopIteration = errors.New("stop iteration")

// Entry is a key value pair of the trie.
type Entry struct {
	Key   []byte
	Value []byte
}

// IterateFunc is called for each entry, in ascending key order.
type IterateFunc func(key, value []byte) error

// Iterate calls fn for every entry whose key starts with prefix in the
// trie with the given root, in ascending key order. Only the nodes on the
// path to the prefix and below it are retrieved.
func (t *Trie) Iterate(root common.Hash, prefix []byte, fn IterateFunc) error {
	if root == EmptyRoot {
		return nil
	}

	err := t.iterate(root, nibbles.FromKey(prefix), fn)
	if errors.Is(err, ErrStopIteration) {
		return nil
	}
	return err
}

// Entries returns all the entries whose key starts with prefix,
// in ascending key order.
func (t *Trie) Entries(root common.Hash, prefix []byte) (entries []Entry, err error) {
	err = t.Iterate(root, prefix, func(key, value []byte) error {
		entries = append(entries, Entry{Key: key, Value: value})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *Trie) iterate(root common.Hash, prefix []byte, fn IterateFunc) error {
	w := &walker{
		trie: t,
		onEntry: func(key []byte, ref node.ValueRef) error {
			value, err := t.retrieveValue(ref)
			if err != nil {
				return fmt.Errorf("getting value of key 0x%x: %w", key, err)
			}
			return fn(key, value)
		},
	}

	hash := root
	var path []byte
	for {
		n, err := t.retrieveNode(hash)
		if err != nil {
			return err
		}

		if len(prefix) == 0 {
			return w.walk(n, path)
		}

		switch n.Kind {
		case node.Leaf:
			if !nibbles.HasPrefix(n.PartialKey, prefix) {
				return nil
			}
			return w.walk(n, path)
		case node.Extension:
			switch {
			case nibbles.HasPrefix(prefix, n.PartialKey):
				path = nibbles.Concat(path, n.PartialKey...)
				prefix = prefix[len(n.PartialKey):]
				hash = n.Child
			case nibbles.HasPrefix(n.PartialKey, prefix):
				// the prefix ends within the extension key
				return w.walk(n, path)
			default:
				return nil
			}
		case node.Branch, node.BranchWithValue:
			child := n.Children[prefix[0]]
			if child == nil {
				return nil
			}
			path = nibbles.Concat(path, prefix[0])
			prefix = prefix[1:]
			hash = *child
		}
	}
}

// walker visits a sub-trie depth first, in ascending key order.
type walker struct {
	trie *Trie
	// onNode is called with the hash and the encoding
	// of each node retrieved by walkHash.
	onNode  func(hash common.Hash, encoding []byte)
	onEntry func(key []byte, ref node.ValueRef) error
}

func (w *walker) walkHash(hash common.Hash, path []byte) error {
	encoding, err := w.trie.storage.Retrieve(hash)
	if err != nil {
		return err
	}

	n, err := node.Decode(encoding)
	if err != nil {
		return fmt.Errorf("decoding node %s: %w", hash, err)
	}

	if w.onNode != nil {
		w.onNode(hash, encoding)
	}
	return w.walk(n, path)
}

func (w *walker) walk(n *node.Node, path []byte) error {
	switch n.Kind {
	case node.Leaf:
		key := nibbles.Concat(path, n.PartialKey...)
		return w.onEntry(nibbles.ToKey(key), *n.Value)
	case node.Extension:
		return w.walkHash(n.Child, nibbles.Concat(path, n.PartialKey...))
	case node.Branch, node.BranchWithValue:
		if n.Value != nil {
			err := w.onEntry(nibbles.ToKey(path), *n.Value)
			if err != nil {
				return err
			}
		}
		for i, child := range n.Children {
			if child == nil {
				continue
			}
			err := w.walkHash(*child, nibbles.Concat(path, byte(i)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}
