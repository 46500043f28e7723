// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve image search over HTTP",
		Long: `Load the captions and the caption index, then serve:

  GET /search?query=<text>&k=<n>   nearest images as [{image_path, caption}]
  GET /images/<file>               raw image bytes
  GET /api/v1/status               index and embedder status`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx)
}

// serve runs the server until ctx is cancelled.
func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, idx, err := openSearchService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	st := svc.Status()
	slog.Info("caption index loaded",
		"images", st.IndexSize,
		"dimensions", st.Dimensions,
		"embedder", st.Embedder,
		"model", st.Model,
		"build_id", st.BuildID,
	)

	srv, err := newServer(cfg, svc)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
