// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/triestore/lib/common"
)

// ChildrenCapacity is the maximum number of children of a branch.
const ChildrenCapacity = 16

// ValueRef references a value stored apart from the node,
// by its length and the hash of its bytes.
type ValueRef struct {
	Length uint32
	Hash   common.Hash
}

// NewValueRef returns the reference of the value.
func NewValueRef(value []byte) ValueRef {
	return ValueRef{
		Length: uint32(len(value)),
		Hash:   common.MustBlake2bHash(value),
	}
}

// Node is a trie node. Children are always referenced by hash.
type Node struct {
	Kind Kind
	// PartialKey is the nibbles of the key of a leaf or an extension.
	PartialKey []byte
	// Value is set for leaves and branches with value.
	Value *ValueRef
	// Children are the children hashes of a branch, nil if absent.
	Children [ChildrenCapacity]*common.Hash
	// Child is the child hash of an extension.
	Child common.Hash
}

// NewLeaf returns a leaf node.
func NewLeaf(partialKey []byte, value ValueRef) *Node {
	return &Node{
		Kind:       Leaf,
		PartialKey: partialKey,
		Value:      &value,
	}
}

// NewExtension returns an extension node.
func NewExtension(partialKey []byte, child common.Hash) *Node {
	return &Node{
		Kind:       Extension,
		PartialKey: partialKey,
		Child:      child,
	}
}

// NewBranch returns a branch node, with a value if value is not nil.
func NewBranch(children [ChildrenCapacity]*common.Hash, value *ValueRef) *Node {
	kind := Branch
	if value != nil {
		kind = BranchWithValue
	}
	return &Node{
		Kind:     kind,
		Children: children,
		Value:    value,
	}
}

// NumChildren returns the number of children of a branch.
func (n *Node) NumChildren() (count int) {
	for _, child := range n.Children {
		if child != nil {
			count++
		}
	}
	return count
}

func (n *Node) String() string {
	var builder strings.Builder
	builder.WriteString(n.Kind.String())
	switch n.Kind {
	case Leaf:
		fmt.Fprintf(&builder, " key=%x value=%s", n.PartialKey, n.Value.Hash.Short())
	case Extension:
		fmt.Fprintf(&builder, " key=%x child=%s", n.PartialKey, n.Child.Short())
	case Branch, BranchWithValue:
		fmt.Fprintf(&builder, " children=%d", n.NumChildren())
		if n.Value != nil {
			fmt.Fprintf(&builder, " value=%s", n.Value.Hash.Short())
		}
	}
	return builder.String()
}
