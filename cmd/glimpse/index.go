// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glimpse-dev/glimpse/internal/caption"
	"github.com/glimpse-dev/glimpse/internal/indexer"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed the captions and build the search index",
		Long: `Embed every caption in data.captions_file with the configured embedder
and write the vector index and its path array. Images with an empty caption
or a failed embedding are left out. The server must be restarted to pick up
a new index.`,
		Args: cobra.NoArgs,
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	captions, err := caption.LoadCaptions(cfg.Data.CaptionsFile)
	if err != nil {
		return err
	}

	e, err := trackedEmbedder(cfg)
	if err != nil {
		return err
	}

	report, err := indexer.Run(ctx, captions, e, captionIndexConfig(cfg))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d of %d caption(s) with %s/%s (%d skipped, backend %s, build %s)\n",
		report.Indexed, report.Total, e.Name(), e.Model(), report.Skipped, report.Manifest.Backend, report.Manifest.BuildID)
	return err
}
