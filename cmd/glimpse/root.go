// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glimpse-dev/glimpse/internal/config"
	"github.com/glimpse-dev/glimpse/internal/secrets"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// NewRootCmd creates the root glimpse command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glimpse",
		Short: "Glimpse: search your images by what is in them",
		Long: `Glimpse captions a directory of images with a vision-language model,
embeds the captions, and answers free-text queries with the nearest images.

  glimpse caption   caption every image in data.image_dir
  glimpse index     embed the captions and build the vector index
  glimpse serve     serve GET /search and the images over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			setupLogging(cmd, viper.GetBool("verbose"))
			return nil
		},
	}

	// Global flags map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Register subcommands
	root.AddCommand(
		newInitCmd(),
		newCaptionCmd(),
		newIndexCmd(),
		newServeCmd(),
		newSearchCmd(),
		newStatusCmd(),
		newDoctorCmd(),
		newSecretCmd(),
		newVersionCmd(),
	)

	return root
}

// skipBootstrap marks commands that must not write the default config file.
const skipBootstrap = "glimpse/skip-bootstrap"

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover glimpse.yaml from standard locations.
		// SetConfigType is omitted: with it set, Viper also tries the bare
		// name, which matches the ./glimpse binary.
		v.SetConfigName("glimpse")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/glimpse")
		v.AddConfigPath("/etc/glimpse")
		// No config file is fine: defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if cmd.Annotations[skipBootstrap] == "" {
				if path := config.BootstrapConfig(); path != "" {
					v.SetConfigFile(path)
					if err := v.ReadInConfig(); err != nil {
						return glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
					}
				}
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// setupLogging installs a text slog handler on stderr.
func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// keyringOpener opens secret stores for keyring:// API keys. Tests replace it.
var keyringOpener secrets.Opener = secrets.OpenKeyring

// loadConfig decodes the resolved viper state and resolves keyring API keys.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if path := viper.ConfigFileUsed(); path != "" {
		config.WarnInsecurePermissions(path, cfg)
	}

	if failed := secrets.ResolveFields(cfg.APIKeyFields(), keyringOpener); len(failed) > 0 {
		slog.Warn("some API keys could not be read from the keyring", "keys", failed)
	}
	return cfg, nil
}

// isTerminal reports whether f is a terminal file descriptor.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// reportError prints err to w. Verbose mode adds the error code and any
// structured fields carried by the chain.
func reportError(w io.Writer, err error, verbose bool) {
	_, _ = fmt.Fprintln(w, err)
	if !verbose {
		return
	}
	if code := glimpseerr.CodeOf(err); code != "" {
		_, _ = fmt.Fprintf(w, "  code: %s\n", code)
	}
	fields := glimpseerr.FieldsOf(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", k, fields[k])
	}
}
