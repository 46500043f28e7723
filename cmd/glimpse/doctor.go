// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/glimpse-dev/glimpse/internal/caption"
	"github.com/glimpse-dev/glimpse/internal/config"
	"github.com/glimpse-dev/glimpse/internal/index"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the configuration, image directory, captions, index, running server and disk space.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", "", "server address to check (defaults to server.listen)")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")
	ctx := cmd.Context()

	cfg, cfgErr := config.FromViper(viper.GetViper())

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Config", func() string { return checkConfig(cfgErr) }},
		{"Images", func() string { return checkImages(cfg) }},
		{"Captions", func() string { return checkCaptions(cfg) }},
		{"Index", func() string { return checkIndex(ctx, cfg) }},
		{"Server", func() string { return checkServer(ctx, addr) }},
		{"Disk Space", func() string { return checkDiskSpace(cfg) }},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("glimpse %s (%s/%s, Go %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(err error) string {
	if err != nil {
		return fmt.Sprintf("invalid: %s", err)
	}
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkImages(cfg *config.Config) string {
	if cfg == nil {
		return "skipped (invalid config)"
	}
	paths, err := caption.ListImages(cfg.Data.ImageDir)
	if err != nil {
		if glimpseerr.IsNotFound(err) {
			return fmt.Sprintf("no image directory at %s", cfg.Data.ImageDir)
		}
		return fmt.Sprintf("error: %s", err)
	}
	if len(paths) == 0 {
		return fmt.Sprintf("no images in %s", cfg.Data.ImageDir)
	}
	return fmt.Sprintf("%d image(s) in %s", len(paths), cfg.Data.ImageDir)
}

func checkCaptions(cfg *config.Config) string {
	if cfg == nil {
		return "skipped (invalid config)"
	}
	captions, err := caption.LoadCaptions(cfg.Data.CaptionsFile)
	if err != nil {
		if glimpseerr.IsNotFound(err) {
			return fmt.Sprintf("not found at %s (run 'glimpse caption')", cfg.Data.CaptionsFile)
		}
		return fmt.Sprintf("error: %s", err)
	}
	empty := 0
	for _, c := range captions {
		if c == "" {
			empty++
		}
	}
	return fmt.Sprintf("%d caption(s), %d empty, in %s", len(captions), empty, cfg.Data.CaptionsFile)
}

func checkIndex(ctx context.Context, cfg *config.Config) string {
	if cfg == nil {
		return "skipped (invalid config)"
	}
	idx, err := index.Open(ctx, captionIndexConfig(cfg))
	if err != nil {
		if glimpseerr.IsNotFound(err) {
			return "not built (run 'glimpse index')"
		}
		return fmt.Sprintf("error: %s", err)
	}
	defer func() { _ = idx.Close() }()

	s := fmt.Sprintf("%d vector(s) of %d dimensions (%s)", idx.Len(), idx.Dim(), cfg.Index.Backend)
	if m := idx.Manifest(); m != nil {
		s += fmt.Sprintf(", built with %s/%s", m.Embedder, m.Model)
	}
	return s
}

func checkServer(ctx context.Context, addr string) string {
	client := newServerClient(addr)
	var body statusResponse
	if err := client.getJSON(ctx, "/api/v1/status", &body); err != nil {
		if glimpseerr.HasCode(err, glimpseerr.CodeCLIServerNotRunning) {
			return fmt.Sprintf("not running at %s (run 'glimpse serve')", client.baseURL)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s at %s, %d image(s) indexed", body.State, client.baseURL, body.IndexSize)
}

func checkDiskSpace(cfg *config.Config) string {
	path := "."
	if cfg != nil && cfg.Index.Dir != "" {
		path = cfg.Index.Dir
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Fall back to home directory if the index dir doesn't exist yet.
		path, _ = os.UserHomeDir()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
