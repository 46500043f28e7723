// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/glimpse-dev/glimpse/internal/config"
	"github.com/glimpse-dev/glimpse/internal/secrets"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// initOptions selects the providers written by glimpse init.
type initOptions struct {
	Captioner string
	Embedder  string
	Keyring   bool
}

// hostedModels are the defaults for providers reached through their public API.
var hostedModels = map[string]string{
	"caption/anthropic": "claude-sonnet-4-5",
	"caption/google":    "gemini-2.0-flash",
	"embed/google":      "text-embedding-004",
}

// GenerateConfig builds a complete config from the defaults and opts.
func GenerateConfig(opts initOptions) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	if opts.Captioner != "" && opts.Captioner != cfg.Captioner.Provider {
		cfg.Captioner.Provider = opts.Captioner
		cfg.Captioner.Endpoint = ""
		cfg.Captioner.Model = hostedModels["caption/"+opts.Captioner]
	}

	switch opts.Embedder {
	case "", cfg.Embedder.Provider:
	case "hashing":
		cfg.Embedder.Provider = "hashing"
		cfg.Embedder.Endpoint = ""
		cfg.Embedder.Model = ""
		cfg.Embedder.Dimensions = 384
	default:
		cfg.Embedder.Provider = opts.Embedder
		cfg.Embedder.Endpoint = ""
		cfg.Embedder.Model = hostedModels["embed/"+opts.Embedder]
	}

	if opts.Keyring {
		if cfg.Captioner.Endpoint == "" {
			cfg.Captioner.APIKey = secrets.URI(secrets.DefaultService, cfg.Captioner.Provider+"-api-key")
		}
		if cfg.Embedder.Provider != "hashing" && cfg.Embedder.Endpoint == "" {
			cfg.Embedder.APIKey = secrets.URI(secrets.DefaultService, cfg.Embedder.Provider+"-api-key")
		}
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeCLIInputInvalid, "generated config is invalid: %v", errs)
	}
	return cfg, nil
}

// GenerateConfigYAML renders cfg with a short header.
func GenerateConfigYAML(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Glimpse configuration, generated by glimpse init.\n")
	buf.WriteString("# Every key can be overridden with GLIMPSE_<SECTION>_<KEY> environment variables.\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// configPathForWrite returns the default config path. Tests override it.
var configPathForWrite = config.DefaultConfigPath

func writeConfig(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return glimpseerr.Errorf(glimpseerr.CodeConfigAlreadyExists,
				"config file already exists at %s; use --force to overwrite", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "creating config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "writing config to %s: %w", path, err)
	}
	return nil
}

// --- Cobra command ---

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a glimpse config file",
		Long: `Write a complete glimpse.yaml to ~/.config/glimpse (or --output).

With --keyring, API keys for hosted providers are written as keyring://
references. Store the keys afterwards with:
  glimpse secret set <provider>-api-key`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE:        runInit,
	}

	cmd.Flags().String("captioner", "", "captioner provider: openai, anthropic or google")
	cmd.Flags().String("embedder", "", "embedder provider: openai, google or hashing")
	cmd.Flags().Bool("keyring", false, "reference API keys in the OS keyring")
	cmd.Flags().StringP("output", "o", "", "config path (defaults to ~/.config/glimpse/glimpse.yaml)")
	cmd.Flags().Bool("force", false, "Overwrite existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	var opts initOptions
	opts.Captioner, _ = cmd.Flags().GetString("captioner")
	opts.Embedder, _ = cmd.Flags().GetString("embedder")
	opts.Keyring, _ = cmd.Flags().GetBool("keyring")
	force, _ := cmd.Flags().GetBool("force")
	path, _ := cmd.Flags().GetString("output")

	cfg, err := GenerateConfig(opts)
	if err != nil {
		return err
	}
	data, err := GenerateConfigYAML(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		if path, err = configPathForWrite(); err != nil {
			return err
		}
	}
	if err := writeConfig(path, data, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Config written to %s\n", path)
	seen := map[string]bool{}
	for _, key := range []string{cfg.Captioner.APIKey, cfg.Embedder.APIKey} {
		if _, name, err := secrets.ParseKeyringURI(key); err == nil && !seen[name] {
			seen[name] = true
			_, _ = fmt.Fprintf(out, "Store the API key with: glimpse secret set %s\n", name)
		}
	}
	return nil
}
