// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// HashLength is the expected length of the common.Hash type
	HashLength = 32
)

// EmptyHash is the zero hash, used as the root of an empty trie.
var EmptyHash = Hash{}

// ErrHexPrefixMissing is returned when a hex string is not 0x prefixed.
var ErrHexPrefixMissing = errors.New("could not byteify non 0x prefixed string")

// Hash used to store a blake2b hash
type Hash [32]byte

// NewHash casts a byte slice to a Hash
// if the input is longer than 32 bytes, it takes the first 32 bytes
func NewHash(in []byte) (res Hash) {
	copy(res[:], in)
	return res
}

// ToBytes turns a hash to a byte slice
func (h Hash) ToBytes() []byte {
	b := [32]byte(h)
	return b[:]
}

// IsEmpty returns true if the hash is empty, false otherwise.
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// String returns the hex string for the hash
func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

// Short returns the first 4 bytes and the last 4 bytes of the hex string for the hash
func (h Hash) Short() string {
	const nBytes = 4
	return fmt.Sprintf("0x%x...%x", h[:nBytes], h[len(h)-nBytes:])
}

// HexToHash turns a 0x prefixed hex string into type Hash
func HexToHash(in string) (Hash, error) {
	if !strings.HasPrefix(in, "0x") {
		return EmptyHash, fmt.Errorf("%w: %q", ErrHexPrefixMissing, in)
	}

	out, err := hex.DecodeString(in[2:])
	if err != nil {
		return EmptyHash, fmt.Errorf("decoding hex: %w", err)
	}

	if len(out) > HashLength {
		return EmptyHash, fmt.Errorf("hash is %d bytes long, expected at most %d", len(out), HashLength)
	}

	var h Hash
	copy(h[HashLength-len(out):], out)
	return h, nil
}

// MustHexToHash turns a 0x prefixed hex string into type Hash
// it panics if it cannot turn the string into a Hash
func MustHexToHash(in string) Hash {
	h, err := HexToHash(in)
	if err != nil {
		panic(err)
	}
	return h
}
