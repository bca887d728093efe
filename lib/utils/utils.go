// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"os"
	"os/user"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// PathExists returns true if the named file or directory exists, otherwise false
func PathExists(p string) bool {
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// HomeDir returns the user's current HOME directory
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// ExpandDir expands a tilde prefix path to a full home path
func ExpandDir(targetPath string) string {
	if strings.HasPrefix(targetPath, "~\\") || strings.HasPrefix(targetPath, "~/") {
		if homeDir := HomeDir(); homeDir != "" {
			targetPath = homeDir + targetPath[1:]
		}
	} else if strings.HasPrefix(targetPath, ".\\") || strings.HasPrefix(targetPath, "./") {
		targetPath, _ = filepath.Abs(targetPath)
	}
	return path.Clean(os.ExpandEnv(targetPath))
}

// BasePath returns the directory of the given name within the triestore
// data directory of the user's HOME directory. If there is no HOME directory,
// the name is returned as is.
func BasePath(name string) string {
	home := HomeDir()
	if home == "" {
		return name
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Triestore", name)
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Triestore", name)
	default:
		return filepath.Join(home, ".triestore", name)
	}
}
