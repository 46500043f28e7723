// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package search answers free-text queries against a loaded caption index.
package search

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/glimpse-dev/glimpse/internal/embed"
	"github.com/glimpse-dev/glimpse/internal/index"
	"github.com/glimpse-dev/glimpse/pkg/health"
)

// MissingCaption is returned for an indexed image whose path is absent from
// the caption map.
const MissingCaption = "No caption available."

// Result is one ranked image.
type Result struct {
	ImagePath string `json:"image_path"`
	Caption   string `json:"caption"`
}

// Service embeds queries and ranks indexed images. Its state is fixed at
// construction, so Search is safe for concurrent use.
type Service struct {
	embedder embed.Embedder
	index    index.Searcher
	captions map[string]string
}

// New builds a query service. The embedder must be the one the index was
// built with.
func New(e embed.Embedder, idx index.Searcher, captions map[string]string) *Service {
	cp := make(map[string]string, len(captions))
	for k, v := range captions {
		cp[k] = v
	}
	return &Service{embedder: e, index: idx, captions: cp}
}

// Search returns up to k results for query, nearest first.
//
// Failures are not surfaced: an embedding error, a query whose dimension does
// not match the index, or k <= 0 all yield an empty, non-nil slice.
func (s *Service) Search(ctx context.Context, query string, k int) []Result {
	results := []Result{}
	if k <= 0 {
		return results
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("query embedding failed", "embedder", s.embedder.Name(), "error", err)
		return results
	}

	hits, err := s.index.Search(ctx, vec, k)
	if err != nil {
		slog.Warn("index search failed", "dimensions", len(vec), "index_dimensions", s.index.Dim(), "error", err)
		return results
	}

	for _, h := range hits {
		caption, ok := s.captions[h.Path]
		if !ok {
			caption = MissingCaption
		}
		results = append(results, Result{
			ImagePath: filepath.Base(h.Path),
			Caption:   caption,
		})
	}
	return results
}

// Len returns the number of indexed images.
func (s *Service) Len() int { return s.index.Len() }

// Status describes the loaded index and the query embedder.
type Status struct {
	IndexSize  int             `json:"index_size"`
	Dimensions int             `json:"dimensions"`
	Backend    string          `json:"backend,omitempty"`
	BuildID    string          `json:"build_id,omitempty"`
	BuiltAt    string          `json:"built_at,omitempty"`
	Embedder   string          `json:"embedder"`
	Model      string          `json:"model"`
	Captions   int             `json:"captions"`
	Health     *health.Metrics `json:"health,omitempty"`
}

// Status reports what the service is serving. Health is set when the
// embedder tracks its own availability.
func (s *Service) Status() Status {
	st := Status{
		IndexSize:  s.index.Len(),
		Dimensions: s.index.Dim(),
		Embedder:   s.embedder.Name(),
		Model:      s.embedder.Model(),
		Captions:   len(s.captions),
	}
	if m := s.index.Manifest(); m != nil {
		st.Backend = m.Backend
		st.BuildID = m.BuildID
		st.BuiltAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	if h, ok := s.embedder.(interface{ Health() health.Metrics }); ok {
		metrics := h.Health()
		st.Health = &metrics
	}
	return st
}

// Index exposes the underlying index for status reporting.
func (s *Service) Index() index.Searcher { return s.index }

// Embedder exposes the query embedder for status reporting.
func (s *Service) Embedder() embed.Embedder { return s.embedder }
