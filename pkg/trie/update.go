// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import (
	"fmt"
	"sort"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/ChainSafe/triestore/pkg/trie/node"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
)

// Change sets the value of a key, or deletes the key if Value is nil.
type Change struct {
	Key   []byte
	Value []byte
}

// Update applies the changes to the trie with the given root and returns
// the reference count changes to commit for the new root.
//
// The trie is rebuilt from all its entries: every node and value of the
// old trie is emitted as a deletion, and every node and value of the new
// trie as an insertion. Content present in both nets to zero once the
// changes are aggregated, so only the difference is written.
func (t *Trie) Update(root common.Hash, changes []Change) (*storage.TrieChanges, error) {
	trieChanges := &storage.TrieChanges{OldRoot: root}
	entries := make(map[string][]byte)

	if root != EmptyRoot {
		w := &walker{
			trie: t,
			onNode: func(hash common.Hash, _ []byte) {
				trieChanges.Deletions = append(trieChanges.Deletions,
					storage.RefcountChange{Hash: hash, RC: 1})
			},
			onEntry: func(key []byte, ref node.ValueRef) error {
				value, err := t.retrieveValue(ref)
				if err != nil {
					return fmt.Errorf("getting value of key 0x%x: %w", key, err)
				}
				entries[string(key)] = value
				trieChanges.Deletions = append(trieChanges.Deletions,
					storage.RefcountChange{Hash: ref.Hash, RC: 1})
				return nil
			},
		}
		err := w.walkHash(root, nil)
		if err != nil {
			return nil, fmt.Errorf("reading trie at root %s: %w", root, err)
		}
	}

	for _, change := range changes {
		if change.Value == nil {
			delete(entries, string(change.Key))
			continue
		}
		entries[string(change.Key)] = change.Value
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]item, len(keys))
	for i, key := range keys {
		items[i] = item{
			key:   nibbles.FromKey([]byte(key)),
			value: entries[key],
		}
	}

	trieChanges.NewRoot = EmptyRoot
	if len(items) > 0 {
		b := &builder{}
		newRoot, err := b.build(items, 0)
		if err != nil {
			return nil, fmt.Errorf("building trie: %w", err)
		}
		trieChanges.NewRoot = newRoot
		trieChanges.Insertions = b.insertions
	}

	return trieChanges, nil
}

type item struct {
	key   []byte
	value []byte
}

// builder builds a trie bottom up from items sorted by key,
// recording the content of every node and value it creates.
type builder struct {
	insertions []storage.RefcountChange
}

func (b *builder) build(items []item, depth int) (hash common.Hash, err error) {
	if len(items) == 1 {
		ref := b.insertValue(items[0].value)
		partialKey := nibbles.Concat(items[0].key[depth:])
		return b.insertNode(node.NewLeaf(partialKey, ref))
	}

	first := items[0].key[depth:]
	last := items[len(items)-1].key[depth:]
	commonLength := nibbles.CommonPrefixLength(first, last)
	if commonLength > 0 {
		child, err := b.build(items, depth+commonLength)
		if err != nil {
			return hash, err
		}
		partialKey := nibbles.Concat(first[:commonLength])
		return b.insertNode(node.NewExtension(partialKey, child))
	}

	var value *node.ValueRef
	if len(first) == 0 {
		ref := b.insertValue(items[0].value)
		value = &ref
		items = items[1:]
	}

	var children [node.ChildrenCapacity]*common.Hash
	for start := 0; start < len(items); {
		nibble := items[start].key[depth]
		end := start + 1
		for end < len(items) && items[end].key[depth] == nibble {
			end++
		}

		child, err := b.build(items[start:end], depth+1)
		if err != nil {
			return hash, err
		}
		children[nibble] = &child
		start = end
	}

	return b.insertNode(node.NewBranch(children, value))
}

func (b *builder) insertValue(value []byte) node.ValueRef {
	ref := node.NewValueRef(value)
	b.insertions = append(b.insertions, storage.RefcountChange{
		Hash:  ref.Hash,
		Value: value,
		RC:    1,
	})
	return ref
}

func (b *builder) insertNode(n *node.Node) (hash common.Hash, err error) {
	encoding, hash, err := n.EncodeAndHash()
	if err != nil {
		return hash, fmt.Errorf("encoding %s node: %w", n.Kind, err)
	}
	b.insertions = append(b.insertions, storage.RefcountChange{
		Hash:  hash,
		Value: encoding,
		RC:    1,
	})
	return hash, nil
}
