// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glimpse-dev/glimpse/internal/secrets"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore(secrets.DefaultService)
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage API keys stored in the OS keyring",
		Long: `Store, list and delete API keys kept under the glimpse service in the
operating system keyring. Reference a stored key from the config as
keyring://glimpse/<name>.`,
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret read from stdin",
		Example: `  printf %s "$OPENAI_API_KEY" | glimpse secret set openai-api-key
  glimpse secret set anthropic-api-key < key.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runSecretSet,
	}
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored secret names",
		Args:  cobra.NoArgs,
		RunE:  runSecretList,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64<<10))
	if err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeCLIInputInvalid, "reading secret from stdin: %w", err)
	}
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return glimpseerr.New(glimpseerr.CodeCLIInputInvalid, "secret value read from stdin is empty")
	}

	store := secretStoreFactory()
	if err := store.Set(name, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret: %s (use %s in the config)\n", name, secrets.URI(store.Service(), name))
	return nil
}

func runSecretList(cmd *cobra.Command, _ []string) error {
	store := secretStoreFactory()
	keys, err := store.List()
	if err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeSecretListFailure, "listing secrets: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(out, "No secrets stored.")
		return nil
	}

	for _, k := range keys {
		_, _ = fmt.Fprintln(out, k)
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(name); err != nil {
		if glimpseerr.HasCode(err, glimpseerr.CodeSecretNotFound) {
			return glimpseerr.Errorf(glimpseerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return glimpseerr.Errorf(glimpseerr.CodeSecretDeleteFailure, "deleting secret %q: %w", name, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}
