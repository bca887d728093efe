// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ChainSafe/triestore/lib/common"
	"github.com/ChainSafe/triestore/pkg/trie"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	ErrKeyValueMalformed = errors.New("key value pair must be formatted as key=value")
	ErrKeyEmpty          = errors.New("key cannot be empty")
)

// addStringFlagBindViper adds a string flag to the given command and binds it to the given viper name
func addStringFlagBindViper(cmd *cobra.Command,
	v *viper.Viper,
	name,
	defaultValue,
	usage,
	viperBindName string,
) error {
	cmd.PersistentFlags().String(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addIntFlagBindViper adds an int flag to the given command and binds it to the given viper name
func addIntFlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue int,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Int(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addBoolFlagBindViper adds a bool flag to the given command and binds it to the given viper name
func addBoolFlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue bool,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Bool(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addUintFlagBindViper adds a uint flag to the given command and binds it to the given viper name
func addUintFlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue uint,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Uint(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addUint32FlagBindViper adds a uint32 flag to the given command and binds it to the given viper name
func addUint32FlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue uint32,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Uint32(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addUint64FlagBindViper adds a uint64 flag to the given command and binds it to the given viper name
func addUint64FlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue uint64,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Uint64(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// addDurationFlagBindViper adds a duration flag to the given command and binds it to the given viper name
func addDurationFlagBindViper(
	cmd *cobra.Command,
	v *viper.Viper,
	name string,
	defaultValue time.Duration,
	usage string,
	viperBindName string,
) error {
	cmd.PersistentFlags().Duration(name, defaultValue, usage)
	return v.BindPFlag(viperBindName, cmd.PersistentFlags().Lookup(name))
}

// parseBytes returns the bytes of a 0x prefixed hex string,
// or the bytes of the string itself otherwise.
func parseBytes(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return []byte(s), nil
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return b, nil
}

// parseKey parses a non empty key with parseBytes.
func parseKey(s string) ([]byte, error) {
	key, err := parseBytes(s)
	if err != nil {
		return nil, fmt.Errorf("parsing key %q: %w", s, err)
	}
	if len(key) == 0 {
		return nil, ErrKeyEmpty
	}
	return key, nil
}

// parseRoot parses a 0x prefixed hex state root. An empty
// string is the root of the empty trie.
func parseRoot(s string) (common.Hash, error) {
	if s == "" {
		return trie.EmptyRoot, nil
	}

	root, err := common.HexToHash(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("parsing root: %w", err)
	}
	return root, nil
}

// parseChanges returns the trie changes setting each key=value pair
// and deleting each of the deleted keys.
func parseChanges(keyValues, deletedKeys []string) (changes []trie.Change, err error) {
	changes = make([]trie.Change, 0, len(keyValues)+len(deletedKeys))
	for _, keyValue := range keyValues {
		rawKey, rawValue, found := strings.Cut(keyValue, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrKeyValueMalformed, keyValue)
		}

		key, err := parseKey(rawKey)
		if err != nil {
			return nil, err
		}

		value, err := parseBytes(rawValue)
		if err != nil {
			return nil, fmt.Errorf("parsing value of key %q: %w", rawKey, err)
		}
		if value == nil {
			value = []byte{}
		}

		changes = append(changes, trie.Change{Key: key, Value: value})
	}

	for _, rawKey := range deletedKeys {
		key, err := parseKey(rawKey)
		if err != nil {
			return nil, err
		}
		changes = append(changes, trie.Change{Key: key})
	}

	return changes, nil
}

func formatBytes(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
