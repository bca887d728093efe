// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExists(t *testing.T) {
	require.Equal(t, PathExists("../utils"), true)
	require.Equal(t, PathExists("../utilzzz"), false)
}

func TestHomeDir(t *testing.T) {
	const envHomeValue = "/home/test"
	t.Setenv("HOME", envHomeValue)
	homeDir := HomeDir()
	assert.Equal(t, envHomeValue, homeDir)

	t.Setenv("HOME", "")
	homeDir = HomeDir()
	assert.NotEmpty(t, homeDir)
}

func TestExpandDir(t *testing.T) {
	homeDir := HomeDir()

	const tildePath = "~/.local/share/triestore/test"
	expandedTildePath := ExpandDir(tildePath)
	assert.Equal(t, homeDir+"/.local/share/triestore/test", expandedTildePath)

	const absPath = "/tmp/absolute"
	expandedAbsPath := ExpandDir(absPath)
	assert.Equal(t, absPath, expandedAbsPath)

	relative := ExpandDir("./relative")
	assert.True(t, filepath.IsAbs(relative))
}

func TestBasePath(t *testing.T) {
	const pathSuffix = "sometestdirectory"

	basePath := BasePath(pathSuffix)

	assert.NotEqual(t, pathSuffix, basePath)
	assert.True(t, strings.HasSuffix(basePath, pathSuffix))
	assert.True(t, strings.HasPrefix(basePath, HomeDir()))
}
