// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"bytes"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// PartialStorage is the ordered list of trie nodes and values touched
// while executing against the state. It is the proof a validator without
// the state uses to replay the same execution.
type PartialStorage struct {
	Nodes [][]byte
}

// Len returns the number of blobs of the partial storage.
func (p PartialStorage) Len() int {
	return len(p.Nodes)
}

// Prefix returns a partial storage with the first n blobs.
// It returns the partial storage itself if n is larger than its length,
// and an empty partial storage if n is negative.
func (p PartialStorage) Prefix(n int) PartialStorage {
	if n > len(p.Nodes) {
		n = len(p.Nodes)
	} else if n < 0 {
		n = 0
	}
	nodes := make([][]byte, n)
	copy(nodes, p.Nodes[:n])
	return PartialStorage{Nodes: nodes}
}

// Encode SCALE encodes the partial storage as a sequence of byte vectors.
func (p PartialStorage) Encode() ([]byte, error) {
	nodes := p.Nodes
	if nodes == nil {
		nodes = [][]byte{}
	}

	buffer := bytes.NewBuffer(nil)
	err := scale.NewEncoder(buffer).Encode(nodes)
	if err != nil {
		return nil, fmt.Errorf("encoding partial storage: %w", err)
	}
	return buffer.Bytes(), nil
}

// DecodePartialStorage decodes a SCALE encoded partial storage.
// Declared lengths are checked against the remaining input before
// anything is allocated, so untrusted proofs can be decoded.
func DecodePartialStorage(data []byte) (partial PartialStorage, err error) {
	reader := bytes.NewReader(data)
	decoder := scale.NewDecoder(reader)

	count, err := decodeLength(decoder, reader)
	if err != nil {
		return partial, fmt.Errorf("decoding partial storage length: %w", err)
	}

	// every blob takes at least the byte of its length prefix
	nodes := make([][]byte, count)
	for i := range nodes {
		length, err := decodeLength(decoder, reader)
		if err != nil {
			return partial, fmt.Errorf("decoding length of blob %d: %w", i, err)
		}

		nodes[i] = make([]byte, length)
		if length == 0 {
			continue
		}
		err = decoder.Read(nodes[i])
		if err != nil {
			return partial, fmt.Errorf("decoding blob %d: %w", i, err)
		}
	}

	if reader.Len() > 0 {
		return partial, fmt.Errorf("decoding partial storage: %w: %d bytes left",
			ErrTrailingBytes, reader.Len())
	}

	return PartialStorage{Nodes: nodes}, nil
}

// decodeLength decodes a compact length prefix, which cannot be
// larger than the number of bytes left to read.
func decodeLength(decoder *scale.Decoder, reader *bytes.Reader) (int, error) {
	if reader.Len() == 0 {
		return 0, ErrTruncated
	}

	length, err := decoder.DecodeUintCompact()
	if err != nil {
		return 0, err
	}

	if !length.IsInt64() || length.Int64() > int64(reader.Len()) {
		return 0, fmt.Errorf("%w: %s bytes declared, %d bytes left",
			ErrLengthTooLarge, length, reader.Len())
	}
	return int(length.Int64()), nil
}
