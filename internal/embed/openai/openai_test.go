// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/embed"
	"github.com/glimpse-dev/glimpse/internal/embed/openai"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

var _ embed.Embedder = (*openai.Embedder)(nil)

func TestNew_Validation(t *testing.T) {
	_, err := openai.New(openai.Config{BaseURL: "http://localhost:1234/v1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")

	_, err = openai.New(openai.Config{Model: "m"})
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeEmbedInputInvalid))

	e, err := openai.New(openai.Config{Model: "m", BaseURL: "http://localhost:1234/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())
	assert.Equal(t, "m", e.Model())
}

func TestEmbed_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/embeddings"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"nomic","data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1]}],"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))
	defer srv.Close()

	e, err := openai.New(openai.Config{BaseURL: srv.URL + "/v1", Model: "nomic"})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "a red car")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)
	assert.Equal(t, "nomic", got["model"])
	assert.Equal(t, "a red car", got["input"])
}

func TestEmbed_UpstreamErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := openai.New(openai.Config{BaseURL: srv.URL + "/v1", Model: "nomic"})
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "a red car")
	require.Error(t, err)
	assert.Nil(t, vec)
	assert.True(t, glimpseerr.IsUpstreamFailure(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbed_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"nomic","data":[],"usage":{"prompt_tokens":0,"total_tokens":0}}`))
	}))
	defer srv.Close()

	e, err := openai.New(openai.Config{BaseURL: srv.URL + "/v1", Model: "nomic"})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeEmbedResponseInvalid))
}

func TestEmbed_EmptyInput(t *testing.T) {
	e, err := openai.New(openai.Config{BaseURL: "http://127.0.0.1:1/v1", Model: "nomic"})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, glimpseerr.IsInvalidInput(err))
}
