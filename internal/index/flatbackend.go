// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import (
	"context"
)

func init() {
	RegisterBackend("flat", buildFlat, openFlat)
}

// buildFlat writes the index file first and the path array second.
func buildFlat(_ context.Context, cfg Config, entries []Entry) error {
	f, err := NewFlat(len(entries[0].Vector))
	if err != nil {
		return err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		if err := f.Add(e.Vector); err != nil {
			return err
		}
		paths[i] = e.Path
	}

	if err := SaveFlatFile(cfg.Resolve(cfg.File), f); err != nil {
		return err
	}
	return SavePaths(cfg.Resolve(cfg.PathsFile), paths)
}

func openFlat(_ context.Context, cfg Config) (Searcher, error) {
	f, err := LoadFlatFile(cfg.Resolve(cfg.File))
	if err != nil {
		return nil, err
	}
	paths, err := LoadPaths(cfg.Resolve(cfg.PathsFile))
	if err != nil {
		return nil, err
	}
	if err := CheckAligned(f.Len(), len(paths)); err != nil {
		return nil, err
	}

	var m *Manifest
	if cfg.ManifestFile != "" {
		if m, err = LoadManifest(cfg.Resolve(cfg.ManifestFile)); err != nil {
			return nil, err
		}
	}
	return &FlatSearcher{flat: f, paths: paths, manifest: m}, nil
}

// FlatSearcher serves queries from an in-memory Flat index.
type FlatSearcher struct {
	flat     *Flat
	paths    []string
	manifest *Manifest
}

// NewFlatSearcher pairs an index with its row-aligned paths.
func NewFlatSearcher(f *Flat, paths []string) (*FlatSearcher, error) {
	if err := CheckAligned(f.Len(), len(paths)); err != nil {
		return nil, err
	}
	return &FlatSearcher{flat: f, paths: paths}, nil
}

func (s *FlatSearcher) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits, err := s.flat.Search(query, k)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].Path = s.paths[hits[i].Row]
	}
	return hits, nil
}

func (s *FlatSearcher) Len() int            { return s.flat.Len() }
func (s *FlatSearcher) Dim() int            { return s.flat.Dim() }
func (s *FlatSearcher) Manifest() *Manifest { return s.manifest }
func (s *FlatSearcher) Close() error        { return nil }

func (s *FlatSearcher) Path(row int) (string, bool) {
	if row < 0 || row >= len(s.paths) {
		return "", false
	}
	return s.paths[row], true
}
