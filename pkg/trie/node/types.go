// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import "fmt"

// Kind is the type of the node, encoded as its first byte.
type Kind byte

const (
	// Leaf kind for leaf nodes.
	Leaf Kind = iota
	// Branch kind for branches without value.
	Branch
	// BranchWithValue kind for branches with a value.
	BranchWithValue
	// Extension kind for extension nodes.
	Extension
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "Leaf"
	case Branch:
		return "Branch"
	case BranchWithValue:
		return "BranchWithValue"
	case Extension:
		return "Extension"
	default:
		panic(fmt.Sprintf("invalid node type: %d", k))
	}
}
