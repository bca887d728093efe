// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var ErrProofTooLarge = errors.New("proof is too large")

// encodeProof returns the SCALE encoding of the proof, compressed
// with zstd if compress is true.
func encodeProof(proof storage.PartialStorage, compress bool) ([]byte, error) {
	encoded, err := proof.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding proof: %w", err)
	}

	if !compress {
		return encoded, nil
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(encoded, nil), nil
}

// decodeProof decodes a proof written by encodeProof, which may or may
// not be compressed with zstd. Proofs larger than maxSize bytes, before
// or after decompression, are rejected.
func decodeProof(data []byte, maxSize uint64) (proof storage.PartialStorage, err error) {
	if uint64(len(data)) > maxSize {
		return proof, fmt.Errorf("%w: %d bytes exceed %d bytes", ErrProofTooLarge, len(data), maxSize)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSize))
		if err != nil {
			return proof, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer decoder.Close()

		data, err = decoder.DecodeAll(data, nil)
		if err != nil {
			return proof, fmt.Errorf("decompressing proof: %w", err)
		}
	}

	proof, err = storage.DecodePartialStorage(data)
	if err != nil {
		return proof, fmt.Errorf("decoding proof: %w", err)
	}
	return proof, nil
}
