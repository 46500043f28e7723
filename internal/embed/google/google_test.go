// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package google_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/embed"
	"github.com/glimpse-dev/glimpse/internal/embed/google"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

var _ embed.Embedder = (*google.Embedder)(nil)

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := google.New(google.Config{Model: "text-embedding-004"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, glimpseerr.IsInvalidInput(err))
}

func TestNew_MissingModel(t *testing.T) {
	_, err := google.New(google.Config{APIKey: "test-key-not-real"})
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeEmbedInputInvalid))
}

func TestEmbed_EmptyInput(t *testing.T) {
	e, err := google.New(google.Config{APIKey: "test-key-not-real", Model: "text-embedding-004"})
	require.NoError(t, err)
	assert.Equal(t, "google", e.Name())
	assert.Equal(t, "text-embedding-004", e.Model())

	_, err = e.Embed(context.Background(), "")
	require.Error(t, err)
	assert.True(t, glimpseerr.IsInvalidInput(err))
}
