// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package trie

import "errors"

// ErrValueLength is returned when a value does not have
// the length its node references.
var ErrValueLength = errors.New("value length mismatch")
