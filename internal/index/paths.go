// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/glimpse-dev/glimpse/internal/fsutil"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// SavePaths writes the row-aligned image path array as a JSON array.
func SavePaths(path string, paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	err := fsutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(paths)
	})
	if err != nil {
		return glimpseerr.Wrap(err, glimpseerr.CodeIndexWriteFailure, "saving path array", glimpseerr.FieldPath(path))
	}
	return nil
}

// LoadPaths reads a path array written by SavePaths.
func LoadPaths(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexNotFound, "path array does not exist", glimpseerr.FieldPath(path))
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexReadFailure, "reading path array", glimpseerr.FieldPath(path))
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexFormatInvalid, "parsing path array", glimpseerr.FieldPath(path))
	}
	return paths, nil
}
