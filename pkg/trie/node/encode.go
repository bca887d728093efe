// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie/nibbles"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Encode encodes the node to the buffer. The encoding is the node kind
// byte followed by the SCALE encoding of its fields:
//   - leaf: hex prefix encoded partial key, value length and hash
//   - extension: hex prefix encoded partial key, child hash
//   - branch: little endian children bitmap, hashes of the present
//     children and, for a branch with value, value length and hash.
func (n *Node) Encode(buffer Buffer) (err error) {
	encoder := scale.NewEncoder(buffer)

	err = encoder.Encode(byte(n.Kind))
	if err != nil {
		return fmt.Errorf("encoding kind: %w", err)
	}

	switch n.Kind {
	case Leaf:
		err = encoder.Encode(nibbles.Encode(n.PartialKey, true))
		if err != nil {
			return fmt.Errorf("encoding partial key: %w", err)
		}
		return encodeValueRef(encoder, n.Value)
	case Extension:
		err = encoder.Encode(nibbles.Encode(n.PartialKey, false))
		if err != nil {
			return fmt.Errorf("encoding partial key: %w", err)
		}
		err = encoder.Encode(n.Child)
		if err != nil {
			return fmt.Errorf("encoding child hash: %w", err)
		}
		return nil
	case Branch, BranchWithValue:
		err = encoder.Encode(n.childrenBitmap())
		if err != nil {
			return fmt.Errorf("encoding children bitmap: %w", err)
		}
		for i, child := range n.Children {
			if child == nil {
				continue
			}
			err = encoder.Encode(*child)
			if err != nil {
				return fmt.Errorf("encoding child %d hash: %w", i, err)
			}
		}
		if n.Kind == Branch {
			return nil
		}
		return encodeValueRef(encoder, n.Value)
	default:
		return fmt.Errorf("%w: %d", ErrKindUnknown, n.Kind)
	}
}

// EncodeAndHash returns the encoding of the node and its hash.
func (n *Node) EncodeAndHash() (encoding []byte, hash common.Hash, err error) {
	buffer := bytes.NewBuffer(nil)
	err = n.Encode(buffer)
	if err != nil {
		return nil, hash, err
	}
	encoding = buffer.Bytes()
	return encoding, common.MustBlake2bHash(encoding), nil
}

func (n *Node) childrenBitmap() (bitmap uint16) {
	for i, child := range n.Children {
		if child != nil {
			bitmap |= 1 << uint(i)
		}
	}
	return bitmap
}

func encodeValueRef(encoder *scale.Encoder, ref *ValueRef) (err error) {
	if ref == nil {
		return ErrValueRefMissing
	}

	err = encoder.Encode(ref.Length)
	if err != nil {
		return fmt.Errorf("encoding value length: %w", err)
	}
	err = encoder.Encode(ref.Hash)
	if err != nil {
		return fmt.Errorf("encoding value hash: %w", err)
	}
	return nil
}
