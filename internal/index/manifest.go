// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/glimpse-dev/glimpse/internal/fsutil"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Manifest records how an index was built. The query side uses it to
// confirm it embeds queries with the same provider and model.
type Manifest struct {
	BuildID    string    `json:"build_id"`
	Backend    string    `json:"backend"`
	Embedder   string    `json:"embedder"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at"`
}

// BuildInfo names the embedder that produced the vectors being indexed.
type BuildInfo struct {
	Embedder string
	Model    string
}

func newManifest(backend string, info BuildInfo, dim, count int, now time.Time) *Manifest {
	return &Manifest{
		BuildID:    uuid.NewString(),
		Backend:    backend,
		Embedder:   info.Embedder,
		Model:      info.Model,
		Dimensions: dim,
		Count:      count,
		CreatedAt:  now.UTC(),
	}
}

// SaveManifest writes m to path as indented JSON.
func SaveManifest(path string, m *Manifest) error {
	err := fsutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	})
	if err != nil {
		return glimpseerr.Wrap(err, glimpseerr.CodeIndexWriteFailure, "saving manifest", glimpseerr.FieldPath(path))
	}
	return nil
}

// LoadManifest reads the manifest at path. A missing manifest returns
// (nil, nil); indexes built by other tools carry none.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexReadFailure, "reading manifest", glimpseerr.FieldPath(path))
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeIndexFormatInvalid, "parsing manifest", glimpseerr.FieldPath(path))
	}
	return &m, nil
}
