// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package index builds and opens the caption vector index.
//
// An index is a set of vectors plus a path array of the same length: row i
// of the index belongs to path i. Both are written together by Build and
// loaded together by Open, which refuses mismatched lengths.
package index

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config locates the index files for every backend.
type Config struct {
	Backend      string
	Dir          string
	File         string
	PathsFile    string
	ManifestFile string
	SQLiteFile   string
}

// Resolve joins name onto Dir unless name is already absolute.
func (c Config) Resolve(name string) string {
	if filepath.IsAbs(name) || c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// Entry is one vector to index together with the image it describes.
type Entry struct {
	Path   string
	Vector []float32
}

// Hit is one search result. Distance is squared L2.
type Hit struct {
	Row      int
	Path     string
	Distance float32
}

// Searcher is a loaded, read-only index.
type Searcher interface {
	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Len() int
	Dim() int
	// Path returns the image path for row.
	Path(row int) (string, bool)
	// Manifest is nil when the index was written without one.
	Manifest() *Manifest
	Close() error
}

// BuildFunc persists entries for a backend. Entries are non-empty and share
// one dimension.
type BuildFunc func(ctx context.Context, cfg Config, entries []Entry) error

// OpenFunc loads a backend's index for querying.
type OpenFunc func(ctx context.Context, cfg Config) (Searcher, error)

var (
	builders    = map[string]BuildFunc{}
	openers     = map[string]OpenFunc{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers the build and open functions of a named index
// backend. Backend packages call this from init(). This function is
// goroutine-safe.
func RegisterBackend(name string, build BuildFunc, open OpenFunc) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	builders[name] = build
	openers[name] = open
}

// Backends lists registered backend names.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}

// resolveBackend returns the effective backend name, defaulting to "flat".
func resolveBackend(cfg Config) string {
	if cfg.Backend == "" {
		return "flat"
	}
	return cfg.Backend
}

var nowFunc = time.Now

// Build validates entries, hands them to the configured backend and writes
// the manifest last. Empty input is an error; duplicate paths are kept.
func Build(ctx context.Context, cfg Config, entries []Entry, info BuildInfo) (*Manifest, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	build, ok := builders[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, glimpseerr.New(glimpseerr.CodeIndexBackendUnsupported, "unsupported index backend",
			glimpseerr.FieldBackend(backend))
	}

	if len(entries) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeIndexBuildEmpty, "no vectors to index")
	}
	dim := len(entries[0].Vector)
	if dim == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeIndexDimensionMismatch, "first vector is empty")
	}
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, glimpseerr.Errorf(glimpseerr.CodeIndexDimensionMismatch,
				"entry %d (%s) has %d dimensions, expected %d", i, e.Path, len(e.Vector), dim)
		}
	}

	if err := build(ctx, cfg, entries); err != nil {
		return nil, err
	}

	m := newManifest(backend, info, dim, len(entries), nowFunc())
	if cfg.ManifestFile != "" {
		if err := SaveManifest(cfg.Resolve(cfg.ManifestFile), m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Open loads the configured backend's index.
func Open(ctx context.Context, cfg Config) (Searcher, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	open, ok := openers[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, glimpseerr.New(glimpseerr.CodeIndexBackendUnsupported, "unsupported index backend",
			glimpseerr.FieldBackend(backend))
	}
	return open(ctx, cfg)
}

// CheckAligned returns an error unless the index and path array have the
// same number of rows.
func CheckAligned(rows, paths int) error {
	if rows != paths {
		return glimpseerr.Errorf(glimpseerr.CodeIndexMisaligned,
			"index has %d rows but path array has %d entries", rows, paths)
	}
	return nil
}
