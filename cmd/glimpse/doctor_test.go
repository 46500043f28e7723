// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor_RunsAllChecks(t *testing.T) {
	out, err := executeCmd(t, "doctor", "--address", "127.0.0.1:1")
	require.NoError(t, err)

	for _, name := range []string{"Binary:", "Config:", "Images:", "Captions:", "Index:", "Server:", "Disk Space:"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "not running")
}

func TestDoctor_Workspace(t *testing.T) {
	ws := newTestWorkspace(t, "flat", "")
	ws.addImage(t, "a.png")
	ws.writeCaptions(t, map[string]string{"a.png": "a red car", "b.png": ""})
	_, err := executeCmd(t, "index", "--config", ws.configPath)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "index_size": 1})
	}))
	defer srv.Close()

	out, err := executeCmd(t, "doctor", "--config", ws.configPath, "--address", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded from "+ws.configPath)
	assert.Contains(t, out, "1 image(s) in")
	assert.Contains(t, out, "2 caption(s), 1 empty")
	assert.Contains(t, out, "1 vector(s) of 384 dimensions (flat), built with hashing/fnv1a-bow")
	assert.Contains(t, out, "ok at "+srv.URL+", 1 image(s) indexed")
	assert.Contains(t, out, "available")
}

func TestDoctor_NothingBuilt(t *testing.T) {
	ws := newTestWorkspace(t, "flat", "")

	out, err := executeCmd(t, "doctor", "--config", ws.configPath, "--address", "127.0.0.1:1")
	require.NoError(t, err)
	assert.Contains(t, out, "no images in")
	assert.Contains(t, out, "run 'glimpse caption'")
	assert.Contains(t, out, "not built (run 'glimpse index')")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 bytes", formatBytes(512))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
	assert.Equal(t, "2.0 GB", formatBytes(2*1024*1024*1024))
}
