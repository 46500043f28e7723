// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/caption"
	"github.com/glimpse-dev/glimpse/internal/config"
)

// executeCmd runs the root command with args in an isolated HOME and a
// fresh global viper, returning everything written to stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// testWorkspace is a temp directory holding images, captions and the index.
type testWorkspace struct {
	dir        string
	imageDir   string
	captions   string
	configPath string
}

// newTestWorkspace writes a config using the hashing embedder with every
// path inside a temp directory. extra is appended to the YAML verbatim.
func newTestWorkspace(t *testing.T, backend, extra string) *testWorkspace {
	t.Helper()
	dir := t.TempDir()
	ws := &testWorkspace{
		dir:        dir,
		imageDir:   filepath.Join(dir, "images"),
		captions:   filepath.Join(dir, "image_captions.json"),
		configPath: filepath.Join(dir, "glimpse.yaml"),
	}
	require.NoError(t, os.MkdirAll(ws.imageDir, 0o755))

	yaml := fmt.Sprintf(`data:
  image_dir: %q
  captions_file: %q
embedder:
  provider: hashing
  dimensions: 384
index:
  backend: %s
  dir: %q
server:
  listen: 127.0.0.1:0
%s`, ws.imageDir, ws.captions, backend, dir, extra)
	require.NoError(t, os.WriteFile(ws.configPath, []byte(yaml), 0o600))
	return ws
}

func (ws *testWorkspace) addImage(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(ws.imageDir, name)
	require.NoError(t, os.WriteFile(p, []byte("image:"+name), 0o644))
	return p
}

func (ws *testWorkspace) writeCaptions(t *testing.T, captions map[string]string) {
	t.Helper()
	require.NoError(t, caption.SaveCaptions(ws.captions, captions))
}

// loadWorkspaceConfig loads ws's config the way commands do.
func (ws *testWorkspace) loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(ws.configPath)
	require.NoError(t, err)
	return cfg
}

// fakeCaptioner captions by file base name.
type fakeCaptioner struct {
	captions map[string]string
}

func (f *fakeCaptioner) Name() string { return "fake" }

func (f *fakeCaptioner) Caption(_ context.Context, img caption.Image) (string, error) {
	c, ok := f.captions[filepath.Base(img.Path)]
	if !ok {
		return "", fmt.Errorf("no caption for %s", img.Path)
	}
	return c, nil
}

// useCaptioner swaps the captioner constructor for the test's duration.
func useCaptioner(t *testing.T, c caption.Captioner) {
	t.Helper()
	orig := newCaptioner
	newCaptioner = func(*config.Config) (caption.Captioner, error) { return c, nil }
	t.Cleanup(func() { newCaptioner = orig })
}
