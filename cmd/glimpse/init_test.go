// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/glimpse-dev/glimpse/internal/config"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func TestGenerateConfig_Defaults(t *testing.T) {
	cfg, err := GenerateConfig(initOptions{})
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Captioner.Provider)
	assert.Equal(t, "http://127.0.0.1:1234/v1", cfg.Captioner.Endpoint)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Empty(t, cfg.Captioner.APIKey)
}

func TestGenerateConfig_Providers(t *testing.T) {
	tests := []struct {
		name          string
		opts          initOptions
		wantCapModel  string
		wantEmbModel  string
		wantCapKey    string
		wantEmbKey    string
		wantEmbDims   int
		wantEmbEndpt  string
		wantCapEndpnt string
	}{
		{
			name:         "anthropic with hashing",
			opts:         initOptions{Captioner: "anthropic", Embedder: "hashing", Keyring: true},
			wantCapModel: "claude-sonnet-4-5",
			wantCapKey:   "keyring://glimpse/anthropic-api-key",
			wantEmbDims:  384,
		},
		{
			name:         "google for both",
			opts:         initOptions{Captioner: "google", Embedder: "google", Keyring: true},
			wantCapModel: "gemini-2.0-flash",
			wantEmbModel: "text-embedding-004",
			wantCapKey:   "keyring://glimpse/google-api-key",
			wantEmbKey:   "keyring://glimpse/google-api-key",
		},
		{
			name:          "local openai keeps endpoints and skips keyring",
			opts:          initOptions{Captioner: "openai", Embedder: "openai", Keyring: true},
			wantCapModel:  "llava-v1.5-7b",
			wantEmbModel:  "text-embedding-nomic-embed-text-v1.5",
			wantCapEndpnt: "http://127.0.0.1:1234/v1",
			wantEmbEndpt:  "http://127.0.0.1:1234/v1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := GenerateConfig(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCapModel, cfg.Captioner.Model)
			assert.Equal(t, tt.wantEmbModel, cfg.Embedder.Model)
			assert.Equal(t, tt.wantCapKey, cfg.Captioner.APIKey)
			assert.Equal(t, tt.wantEmbKey, cfg.Embedder.APIKey)
			assert.Equal(t, tt.wantEmbDims, cfg.Embedder.Dimensions)
			assert.Equal(t, tt.wantCapEndpnt, cfg.Captioner.Endpoint)
			assert.Equal(t, tt.wantEmbEndpt, cfg.Embedder.Endpoint)
		})
	}
}

func TestGenerateConfig_UnknownProvider(t *testing.T) {
	_, err := GenerateConfig(initOptions{Captioner: "mystery"})
	require.Error(t, err)
	assert.True(t, glimpseerr.HasCode(err, glimpseerr.CodeCLIInputInvalid))
}

func TestGenerateConfigYAML_LoadsBack(t *testing.T) {
	cfg, err := GenerateConfig(initOptions{Captioner: "anthropic", Embedder: "hashing", Keyring: true})
	require.NoError(t, err)
	data, err := GenerateConfigYAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Glimpse configuration")

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "server")

	path := filepath.Join(t.TempDir(), "glimpse.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "glimpse.yaml")

	out, err := executeCmd(t, "init", "--captioner", "anthropic", "--keyring", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+path)
	assert.Contains(t, out, "glimpse secret set anthropic-api-key")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.Captioner.Provider)

	_, err = executeCmd(t, "init", "--output", path)
	require.Error(t, err)
	assert.True(t, glimpseerr.IsConflict(err))

	_, err = executeCmd(t, "init", "--output", path, "--force", "--embedder", "hashing")
	require.NoError(t, err)
	loaded, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hashing", loaded.Embedder.Provider)
	assert.Equal(t, "openai", loaded.Captioner.Provider)
}

func TestInitCommand_DefaultPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glimpse.yaml")
	orig := configPathForWrite
	configPathForWrite = func() (string, error) { return path, nil }
	t.Cleanup(func() { configPathForWrite = orig })

	_, err := executeCmd(t, "init")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestInitCommand_FreshHome(t *testing.T) {
	out, err := executeCmd(t, "init", "--embedder", "hashing")
	require.NoError(t, err)

	path, err := config.DefaultConfigPath()
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hashing", loaded.Embedder.Provider)
}
