// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glimpse-dev/glimpse/internal/search"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Check the running server's status endpoint and display index and embedder information.",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	cmd.Flags().String("address", "", "server address (defaults to server.listen)")

	return cmd
}

// statusResponse mirrors the body of GET /api/v1/status.
type statusResponse struct {
	State   string `json:"status"`
	Version string `json:"version"`
	search.Status
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	client := newServerClient(addr)
	var body statusResponse
	if err := client.getJSON(cmd.Context(), "/api/v1/status", &body); err != nil {
		if glimpseerr.HasCode(err, glimpseerr.CodeCLIServerNotRunning) {
			_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", client.baseURL)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", client.baseURL, err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Server at %s: %s (version %s)\n", client.baseURL, body.State, body.Version)
	_, _ = fmt.Fprintf(out, "  Images:    %d indexed, %d captioned\n", body.IndexSize, body.Captions)
	_, _ = fmt.Fprintf(out, "  Embedder:  %s/%s (%d dimensions)\n", body.Embedder, body.Model, body.Dimensions)
	if body.BuildID != "" {
		_, _ = fmt.Fprintf(out, "  Index:     %s build %s at %s\n", body.Backend, body.BuildID, body.BuiltAt)
	}
	if h := body.Health; h != nil {
		state := "available"
		if !h.Available {
			state = "unavailable"
		}
		_, _ = fmt.Fprintf(out, "  Health:    %s (%d ok, %d failed)\n", state, h.SuccessCount, h.FailureCount)
		if h.LastError != "" {
			_, _ = fmt.Fprintf(out, "  Last error: %s\n", h.LastError)
		}
	}
	return nil
}
