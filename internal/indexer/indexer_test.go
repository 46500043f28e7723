// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package indexer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/embed/hashing"
	"github.com/glimpse-dev/glimpse/internal/index"
	"github.com/glimpse-dev/glimpse/internal/indexer"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// flakyEmbedder fails for the texts listed in fail.
type flakyEmbedder struct {
	fail map[string]bool
}

func (f *flakyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.fail[text] {
		return nil, errors.New("embedding endpoint unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *flakyEmbedder) Name() string  { return "flaky" }
func (f *flakyEmbedder) Model() string { return "flaky-1" }

func testConfig(dir string) index.Config {
	return index.Config{
		Backend:      "flat",
		Dir:          dir,
		File:         "caption_index.glx",
		PathsFile:    "caption_image_paths.json",
		ManifestFile: "caption_index.manifest.json",
	}
}

func TestRun_SkipsFailuresAndStaysAligned(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t.TempDir())

	captions := map[string]string{
		"img/c.png": "ccc",
		"img/a.png": "a",
		"img/b.png": "bb-fails",
		"img/d.png": "",
		"img/e.png": "eeeee",
	}
	e := &flakyEmbedder{fail: map[string]bool{"bb-fails": true}}

	report, err := indexer.Run(ctx, captions, e, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, "flaky", report.Manifest.Embedder)
	assert.Equal(t, "flaky-1", report.Manifest.Model)

	s, err := index.Open(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	want := []string{"img/a.png", "img/c.png", "img/e.png"}
	for row, p := range want {
		got, ok := s.Path(row)
		require.True(t, ok)
		assert.Equal(t, p, got)

		// Each row's vector is the one produced for that path's caption.
		vec, err := e.Embed(ctx, captions[p])
		require.NoError(t, err)
		hits, err := s.Search(ctx, vec, 1)
		require.NoError(t, err)
		assert.Equal(t, row, hits[0].Row)
	}
}

func TestRun_NothingEmbedded(t *testing.T) {
	captions := map[string]string{"a.png": "x", "b.png": ""}
	e := &flakyEmbedder{fail: map[string]bool{"x": true}}

	_, err := indexer.Run(context.Background(), captions, e, testConfig(t.TempDir()))
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeIndexBuildEmpty))
}

func TestRun_EmptyCaptions(t *testing.T) {
	e, err := hashing.New(32)
	require.NoError(t, err)

	_, err = indexer.Run(context.Background(), map[string]string{}, e, testConfig(t.TempDir()))
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeIndexBuildEmpty))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := hashing.New(32)
	require.NoError(t, err)
	_, err = indexer.Run(ctx, map[string]string{"a.png": "a dog"}, e, testConfig(t.TempDir()))
	require.ErrorIs(t, err, context.Canceled)
}
