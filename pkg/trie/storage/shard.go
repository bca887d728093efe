// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"encoding/binary"
	"fmt"
)

// ShardUIDLength is the length of the encoded ShardUID.
const ShardUIDLength = 8

// ShardUID identifies a shard for a given shard layout version.
// Its encoding prefixes every key the shard writes to the database.
type ShardUID struct {
	Version uint32
	ShardID uint32
}

// SingleShard returns the shard identifier used when there is only one shard.
func SingleShard() ShardUID {
	return ShardUID{Version: 0, ShardID: 0}
}

// Bytes returns the little endian encoding of the version
// followed by the shard id.
func (s ShardUID) Bytes() []byte {
	b := make([]byte, ShardUIDLength)
	binary.LittleEndian.PutUint32(b[:4], s.Version)
	binary.LittleEndian.PutUint32(b[4:], s.ShardID)
	return b
}

func (s ShardUID) String() string {
	return fmt.Sprintf("s%d.v%d", s.ShardID, s.Version)
}
