// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package indexer turns the caption map into a vector index.
package indexer

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/glimpse-dev/glimpse/internal/embed"
	"github.com/glimpse-dev/glimpse/internal/index"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Report summarizes one indexing run.
type Report struct {
	Total    int
	Indexed  int
	Skipped  int
	Manifest *index.Manifest
}

// Run embeds every caption in sorted path order and builds the index.
//
// Empty captions and failed embeddings are skipped, so the path array only
// ever contains paths that received a vector. Returns an index.build error
// when nothing could be embedded.
func Run(ctx context.Context, captions map[string]string, e embed.Embedder, cfg index.Config) (*Report, error) {
	paths := make([]string, 0, len(captions))
	for p := range captions {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	report := &Report{Total: len(paths)}
	entries := make([]index.Entry, 0, len(paths))

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		caption := captions[p]
		if strings.TrimSpace(caption) == "" {
			slog.Warn("skipping image with empty caption", "path", p)
			report.Skipped++
			continue
		}

		vec, err := e.Embed(ctx, caption)
		if err != nil {
			slog.Warn("skipping image, caption embedding failed", "path", p, "embedder", e.Name(), "error", err)
			report.Skipped++
			continue
		}

		entries = append(entries, index.Entry{Path: p, Vector: vec})
		slog.Debug("embedded caption", "path", p, "dimensions", len(vec))
	}

	if len(entries) == 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexBuildEmpty,
			"no caption could be embedded (%d captions, %d skipped)", report.Total, report.Skipped)
	}

	m, err := index.Build(ctx, cfg, entries, index.BuildInfo{Embedder: e.Name(), Model: e.Model()})
	if err != nil {
		return nil, err
	}

	report.Indexed = len(entries)
	report.Manifest = m
	slog.Info("caption index built",
		"backend", m.Backend,
		"indexed", report.Indexed,
		"skipped", report.Skipped,
		"dimensions", m.Dimensions,
		"build_id", m.BuildID,
	)
	return report, nil
}
