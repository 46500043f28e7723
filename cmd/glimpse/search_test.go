// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/search"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// newFakeSearchServer serves results on /search and records the last query string.
func newFakeSearchServer(t *testing.T, results []search.Result) (*httptest.Server, *url.Values) {
	t.Helper()
	last := &url.Values{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		*last = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestSearchCommand(t *testing.T) {
	srv, last := newFakeSearchServer(t, []search.Result{
		{ImagePath: "a.png", Caption: "a red car"},
		{ImagePath: "b.png", Caption: "a blue bicycle"},
	})

	out, err := executeCmd(t, "search", "red car", "-k", "2", "--address", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	assert.Contains(t, out, " 1. a.png\n    a red car\n")
	assert.Contains(t, out, " 2. b.png\n    a blue bicycle\n")
	assert.Equal(t, "red car", last.Get("query"))
	assert.Equal(t, "2", last.Get("k"))
}

func TestSearchCommand_DefaultKOmitted(t *testing.T) {
	srv, last := newFakeSearchServer(t, []search.Result{})

	out, err := executeCmd(t, "search", "anything", "--address", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No results.")
	assert.False(t, last.Has("k"))
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	_, err := executeCmd(t, "search")
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCLIInputInvalid))
}

func TestSearchCommand_NegativeK(t *testing.T) {
	_, err := executeCmd(t, "search", "car", "-k", "-1")
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCLIInputInvalid))
}

func TestSearchCommand_ServerDown(t *testing.T) {
	_, err := executeCmd(t, "search", "car", "--address", "127.0.0.1:1")
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCLIServerNotRunning))
}

func TestSearchCommand_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"internal error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := executeCmd(t, "search", "car", "-k", "3", "--address", srv.URL)
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCLIRequestFailure))
	assert.Contains(t, err.Error(), "500")
}

func TestSearchCommand_InteractiveNeedsTerminal(t *testing.T) {
	_, err := executeCmd(t, "search", "--interactive", "--address", "127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.0.0","index_size":2,"dimensions":384,
			"backend":"flat","build_id":"b-1","built_at":"2026-01-02T03:04:05Z","embedder":"hashing",
			"model":"fnv1a-bow","captions":3,"health":{"available":true,"success_count":4,"failure_count":1,"last_error":"boom"}}`))
	}))
	defer srv.Close()

	out, err := executeCmd(t, "status", "--address", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, ": ok (version 1.0.0)")
	assert.Contains(t, out, "2 indexed, 3 captioned")
	assert.Contains(t, out, "hashing/fnv1a-bow (384 dimensions)")
	assert.Contains(t, out, "flat build b-1")
	assert.Contains(t, out, "available (4 ok, 1 failed)")
	assert.Contains(t, out, "Last error: boom")
}

func TestStatusCommand_ServerDown(t *testing.T) {
	out, err := executeCmd(t, "status", "--address", "127.0.0.1:1")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}
