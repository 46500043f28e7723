// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package caption_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func TestSaveCaptions_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_captions.json")
	require.NoError(t, caption.SaveCaptions(path, map[string]string{
		"data/images/b.png": "a blue bicycle",
		"data/images/a.png": "a red car",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "data/images/a.png": "a red car",
  "data/images/b.png": "a blue bicycle"
}
`, string(data))

	got, err := caption.LoadCaptions(path)
	require.NoError(t, err)
	assert.Equal(t, "a red car", got["data/images/a.png"])
}

func TestSaveCaptions_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image_captions.json")
	require.NoError(t, caption.SaveCaptions(path, map[string]string{"old.png": "old"}))
	require.NoError(t, caption.SaveCaptions(path, map[string]string{"new.png": "new"}))

	got, err := caption.LoadCaptions(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"new.png": "new"}, got)
}

func TestLoadCaptions_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := caption.LoadCaptions(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, glimpseerr.IsNotFound(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o644))
	_, err = caption.LoadCaptions(bad)
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCaptionStoreFailure))
}
