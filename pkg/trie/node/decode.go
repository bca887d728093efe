// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

var (
	ErrKindUnknown     = errors.New("node kind is unknown")
	ErrValueRefMissing = errors.New("value reference is missing")
	ErrLeafFlag        = errors.New("partial key leaf flag does not match node kind")
	ErrBranchEmpty     = errors.New("branch has no children")
	ErrTrailingBytes   = errors.New("trailing bytes after node")
)

// Decode decodes a node encoded with Encode.
func Decode(data []byte) (n *Node, err error) {
	reader := bytes.NewReader(data)
	decoder := scale.NewDecoder(reader)

	var kind byte
	err = decoder.Decode(&kind)
	if err != nil {
		return nil, fmt.Errorf("decoding kind: %w", err)
	}

	n = &Node{Kind: Kind(kind)}
	switch n.Kind {
	case Leaf:
		n.PartialKey, err = decodePartialKey(decoder, true)
		if err != nil {
			return nil, err
		}
		n.Value, err = decodeValueRef(decoder)
		if err != nil {
			return nil, err
		}
	case Extension:
		n.PartialKey, err = decodePartialKey(decoder, false)
		if err != nil {
			return nil, err
		}
		err = decoder.Decode(&n.Child)
		if err != nil {
			return nil, fmt.Errorf("decoding child hash: %w", err)
		}
	case Branch, BranchWithValue:
		var bitmap uint16
		err = decoder.Decode(&bitmap)
		if err != nil {
			return nil, fmt.Errorf("decoding children bitmap: %w", err)
		} else if bitmap == 0 {
			return nil, ErrBranchEmpty
		}
		for i := 0; i < ChildrenCapacity; i++ {
			if bitmap&(1<<uint(i)) == 0 {
				continue
			}
			var child common.Hash
			err = decoder.Decode(&child)
			if err != nil {
				return nil, fmt.Errorf("decoding child %d hash: %w", i, err)
			}
			n.Children[i] = &child
		}
		if n.Kind == BranchWithValue {
			n.Value, err = decodeValueRef(decoder)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrKindUnknown, kind)
	}

	if reader.Len() > 0 {
		return nil, fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, reader.Len())
	}
	return n, nil
}

func decodePartialKey(decoder *scale.Decoder, isLeaf bool) (partialKey []byte, err error) {
	var encoded []byte
	err = decoder.Decode(&encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding partial key: %w", err)
	}

	partialKey, leaf, err := nibbles.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding partial key: %w", err)
	} else if leaf != isLeaf {
		return nil, ErrLeafFlag
	}
	return partialKey, nil
}

func decodeValueRef(decoder *scale.Decoder) (ref *ValueRef, err error) {
	ref = new(ValueRef)
	err = decoder.Decode(&ref.Length)
	if err != nil {
		return nil, fmt.Errorf("decoding value length: %w", err)
	}
	err = decoder.Decode(&ref.Hash)
	if err != nil {
		return nil, fmt.Errorf("decoding value hash: %w", err)
	}
	return ref, nil
}
