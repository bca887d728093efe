// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package nibbles

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrEncoding is returned when an encoded partial key is malformed.
var ErrEncoding = errors.New("malformed nibbles encoding")

const (
	oddFlag  = 0x10
	leafFlag = 0x20
)

// FromKey splits each byte of the key in two nibbles,
// the high nibble first.
func FromKey(key []byte) (nibbles []byte) {
	nibbles = make([]byte, 2*len(key))
	for i, b := range key {
		nibbles[2*i] = b >> 4
		nibbles[2*i+1] = b & 0x0f
	}
	return nibbles
}

// ToKey packs pairs of nibbles back into bytes.
// A trailing odd nibble is dropped.
func ToKey(nibbles []byte) (key []byte) {
	key = make([]byte, len(nibbles)/2)
	for i := range key {
		key[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return key
}

// Encode encodes a partial key with its hex prefix. The first byte
// flags an odd number of nibbles, in which case it also carries the first
// nibble, and flags leaf partial keys. The other nibbles are packed in pairs.
func Encode(nibbles []byte, isLeaf bool) (encoded []byte) {
	odd := len(nibbles)%2 == 1
	encoded = make([]byte, 1, 1+len(nibbles)/2)

	if odd {
		encoded[0] = oddFlag + nibbles[0]
		nibbles = nibbles[1:]
	}
	if isLeaf {
		encoded[0] += leafFlag
	}

	for i := 0; i < len(nibbles); i += 2 {
		encoded = append(encoded, nibbles[i]<<4|nibbles[i+1])
	}
	return encoded
}

// Decode decodes a partial key encoded with Encode.
func Decode(encoded []byte) (nibbles []byte, isLeaf bool, err error) {
	if len(encoded) == 0 {
		return nil, false, fmt.Errorf("%w: empty", ErrEncoding)
	}

	first := encoded[0]
	if first&^(oddFlag|leafFlag|0x0f) != 0 {
		return nil, false, fmt.Errorf("%w: invalid first byte 0x%02x", ErrEncoding, first)
	}
	isLeaf = first&leafFlag != 0
	odd := first&oddFlag != 0
	if !odd && first&0x0f != 0 {
		return nil, false, fmt.Errorf("%w: padding nibble set in 0x%02x", ErrEncoding, first)
	}

	nibbles = make([]byte, 0, 2*len(encoded))
	if odd {
		nibbles = append(nibbles, first&0x0f)
	}
	nibbles = append(nibbles, FromKey(encoded[1:])...)
	return nibbles, isLeaf, nil
}

// CommonPrefixLength returns the length of the common prefix of a and b.
func CommonPrefixLength(a, b []byte) (length int) {
	for length < len(a) && length < len(b) && a[length] == b[length] {
		length++
	}
	return length
}

// HasPrefix returns true if nibbles starts with prefix.
func HasPrefix(nibbles, prefix []byte) bool {
	return bytes.HasPrefix(nibbles, prefix)
}

// Concat returns a new slice with the nibbles of a followed by b.
func Concat(a []byte, b ...byte) []byte {
	joined := make([]byte, len(a)+len(b))
	copy(joined, a)
	copy(joined[len(a):], b)
	return joined
}
