// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glimpse-dev/glimpse/internal/search"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Query a running glimpse server",
		Long: `Send a query to a running 'glimpse serve' and print the nearest images.
With --interactive, open a terminal UI that searches as you submit queries.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntP("k", "k", 0, "number of results (server default when 0)")
	cmd.Flags().String("address", "", "server address (defaults to server.listen)")
	cmd.Flags().BoolP("interactive", "i", false, "open the interactive search UI")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("k")
	addr, _ := cmd.Flags().GetString("address")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if k < 0 {
		return glimpseerr.Errorf(glimpseerr.CodeCLIInputInvalid, "k must not be negative, got %d", k)
	}

	client := newServerClient(addr)

	if interactive {
		return runSearchTUI(cmd, client, k, strings.Join(args, " "))
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return glimpseerr.New(glimpseerr.CodeCLIInputInvalid, "a query is required (or use --interactive)")
	}

	results, err := client.search(cmd.Context(), args[0], k)
	if err != nil {
		return err
	}
	printResults(cmd, results)
	return nil
}

func printResults(cmd *cobra.Command, results []search.Result) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		_, _ = fmt.Fprintln(out, "No results.")
		return
	}
	for i, r := range results {
		_, _ = fmt.Fprintf(out, "%2d. %s\n    %s\n", i+1, r.ImagePath, r.Caption)
	}
}

func runSearchTUI(cmd *cobra.Command, client *serverClient, k int, initial string) error {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !isTerminal(f) {
		return glimpseerr.New(glimpseerr.CodeCLISetupFailure, "glimpse search --interactive requires an interactive terminal")
	}

	m := newSearchModel(cmd.Context(), client.search, client.baseURL, k)
	m.input.SetValue(initial)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "search UI error: %w", err)
	}
	return nil
}
