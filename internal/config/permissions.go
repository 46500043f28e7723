// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when the config file at path holds
// plaintext API keys and can be read by group or others. It never fails.
func WarnInsecurePermissions(path string, cfg *Config) {
	if path == "" || cfg == nil {
		return
	}
	keys := cfg.PlaintextKeyFields()
	if len(keys) == 0 {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	const groupOrOtherRead fs.FileMode = 0o044
	if info.Mode().Perm()&groupOrOtherRead != 0 {
		slog.Warn("config file with plaintext api keys is readable by other users",
			"path", path,
			"mode", info.Mode(),
			"keys", keys,
			"recommended", "0600 or keyring:// references",
		)
	}
}
