// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package config

import (
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config is the top-level Glimpse configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Captioner CaptionerConfig `mapstructure:"captioner" yaml:"captioner"`
	Embedder  EmbedderConfig  `mapstructure:"embedder" yaml:"embedder"`
	Index     IndexConfig     `mapstructure:"index" yaml:"index"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// DataConfig locates the images and the caption map.
type DataConfig struct {
	ImageDir     string `mapstructure:"image_dir" yaml:"image_dir"`
	CaptionsFile string `mapstructure:"captions_file" yaml:"captions_file"`
}

// CaptionerConfig selects the vision-language model used by `glimpse caption`.
type CaptionerConfig struct {
	Provider       string               `mapstructure:"provider" yaml:"provider"`
	Endpoint       string               `mapstructure:"endpoint" yaml:"endpoint"`
	Model          string               `mapstructure:"model" yaml:"model"`
	APIKey         string               `mapstructure:"api_key" yaml:"api_key"`
	Prompt         string               `mapstructure:"prompt" yaml:"prompt"`
	Temperature    float64              `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int                  `mapstructure:"max_tokens" yaml:"max_tokens"`
	ImageEmbedding ImageEmbeddingConfig `mapstructure:"image_embedding" yaml:"image_embedding"`
}

// ImageEmbeddingConfig controls the optional per-image vector index.
type ImageEmbeddingConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	IndexFile string `mapstructure:"index_file" yaml:"index_file"`
	PathsFile string `mapstructure:"paths_file" yaml:"paths_file"`
}

// EmbedderConfig selects the text embedding model. Index build and query
// must use the same settings.
type EmbedderConfig struct {
	Provider   string `mapstructure:"provider" yaml:"provider"`
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	Dimensions int    `mapstructure:"dimensions" yaml:"dimensions"`
}

// IndexConfig selects the index backend and its files.
type IndexConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	Dir          string `mapstructure:"dir" yaml:"dir"`
	File         string `mapstructure:"file" yaml:"file"`
	PathsFile    string `mapstructure:"paths_file" yaml:"paths_file"`
	ManifestFile string `mapstructure:"manifest_file" yaml:"manifest_file"`
	SQLiteFile   string `mapstructure:"sqlite_file" yaml:"sqlite_file"`
}

// ServerConfig controls the query server.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen" yaml:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	DefaultK    int      `mapstructure:"default_k" yaml:"default_k"`
	MaxK        int      `mapstructure:"max_k" yaml:"max_k"`
}

var (
	captionProviders = []string{"openai", "anthropic", "google"}
	embedProviders   = []string{"openai", "google", "hashing"}
	indexBackends    = []string{"flat", "sqlite"}
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.image_dir", "data/images")
	v.SetDefault("data.captions_file", "image_captions.json")

	v.SetDefault("captioner.provider", "openai")
	v.SetDefault("captioner.endpoint", "http://127.0.0.1:1234/v1")
	v.SetDefault("captioner.model", "llava-v1.5-7b")
	v.SetDefault("captioner.api_key", "")
	v.SetDefault("captioner.prompt", caption.DefaultPrompt)
	v.SetDefault("captioner.temperature", 0.7)
	v.SetDefault("captioner.max_tokens", 500)
	v.SetDefault("captioner.image_embedding.enabled", false)
	v.SetDefault("captioner.image_embedding.endpoint", "http://127.0.0.1:1234/v1")
	v.SetDefault("captioner.image_embedding.model", "clip-vit-large-patch14")
	v.SetDefault("captioner.image_embedding.api_key", "")
	v.SetDefault("captioner.image_embedding.index_file", "image_index.glx")
	v.SetDefault("captioner.image_embedding.paths_file", "image_paths.json")

	v.SetDefault("embedder.provider", "openai")
	v.SetDefault("embedder.endpoint", "http://127.0.0.1:1234/v1")
	v.SetDefault("embedder.model", "text-embedding-nomic-embed-text-v1.5")
	v.SetDefault("embedder.api_key", "")
	v.SetDefault("embedder.dimensions", 0)

	v.SetDefault("index.backend", "flat")
	v.SetDefault("index.dir", ".")
	v.SetDefault("index.file", "caption_index.glx")
	v.SetDefault("index.paths_file", "caption_image_paths.json")
	v.SetDefault("index.manifest_file", "caption_index.manifest.json")
	v.SetDefault("index.sqlite_file", "caption_index.db")

	v.SetDefault("server.listen", "127.0.0.1:8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.default_k", 5)
	v.SetDefault("server.max_k", 100)
}

// SetupEnv binds GLIMPSE_* environment variables, e.g.
// GLIMPSE_EMBEDDER_PROVIDER overrides embedder.provider.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("GLIMPSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix GLIMPSE_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, glimpseerr.Errorf(glimpseerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, glimpseerr.Errorf(glimpseerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateData()...)
	errs = append(errs, c.validateCaptioner()...)
	errs = append(errs, c.validateEmbedder()...)
	errs = append(errs, c.validateIndex()...)
	errs = append(errs, c.validateServer()...)

	return errs
}

func invalid(format string, args ...any) error {
	return glimpseerr.Errorf(glimpseerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateData() []error {
	var errs []error
	if c.Data.ImageDir == "" {
		errs = append(errs, invalid("data.image_dir must not be empty"))
	}
	if c.Data.CaptionsFile == "" {
		errs = append(errs, invalid("data.captions_file must not be empty"))
	}
	return errs
}

func (c *Config) validateCaptioner() []error {
	var errs []error
	cc := c.Captioner

	if !slices.Contains(captionProviders, cc.Provider) {
		errs = append(errs, invalid("captioner.provider must be one of [%s], got %q",
			strings.Join(captionProviders, ", "), cc.Provider))
	}
	if cc.Model == "" {
		errs = append(errs, invalid("captioner.model must not be empty"))
	}
	if cc.Temperature < 0 || cc.Temperature > 2 {
		errs = append(errs, invalid("captioner.temperature must be between 0 and 2, got %g", cc.Temperature))
	}
	if cc.MaxTokens <= 0 {
		errs = append(errs, invalid("captioner.max_tokens must be greater than 0, got %d", cc.MaxTokens))
	}

	if ie := cc.ImageEmbedding; ie.Enabled {
		if ie.Model == "" {
			errs = append(errs, invalid("captioner.image_embedding.model must not be empty when enabled"))
		}
		if ie.Endpoint == "" && ie.APIKey == "" {
			errs = append(errs, invalid("captioner.image_embedding needs an endpoint or api_key when enabled"))
		}
		if ie.IndexFile == "" || ie.PathsFile == "" {
			errs = append(errs, invalid("captioner.image_embedding.index_file and paths_file must not be empty"))
		}
	}
	return errs
}

func (c *Config) validateEmbedder() []error {
	var errs []error
	ec := c.Embedder

	if !slices.Contains(embedProviders, ec.Provider) {
		errs = append(errs, invalid("embedder.provider must be one of [%s], got %q",
			strings.Join(embedProviders, ", "), ec.Provider))
	}
	if ec.Provider != "hashing" && ec.Model == "" {
		errs = append(errs, invalid("embedder.model must not be empty"))
	}
	if ec.Dimensions < 0 {
		errs = append(errs, invalid("embedder.dimensions must not be negative, got %d", ec.Dimensions))
	}
	return errs
}

func (c *Config) validateIndex() []error {
	var errs []error
	ic := c.Index

	if !slices.Contains(indexBackends, ic.Backend) {
		errs = append(errs, invalid("index.backend must be one of [%s], got %q",
			strings.Join(indexBackends, ", "), ic.Backend))
	}
	switch ic.Backend {
	case "flat":
		if ic.File == "" || ic.PathsFile == "" {
			errs = append(errs, invalid("index.file and index.paths_file must not be empty for the flat backend"))
		}
	case "sqlite":
		if ic.SQLiteFile == "" {
			errs = append(errs, invalid("index.sqlite_file must not be empty for the sqlite backend"))
		}
	}
	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	sc := c.Server

	if sc.Listen == "" {
		errs = append(errs, invalid("server.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(sc.Listen)
		if err != nil {
			errs = append(errs, invalid("server.listen must be a valid host:port address, got %q: %w", sc.Listen, err))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, invalid("server.listen port must be a number, got %q", portStr))
			} else if port < 0 || port > 65535 {
				errs = append(errs, invalid("server.listen port must be between 0 and 65535, got %d", port))
			}
		}
	}

	if sc.MaxK <= 0 {
		errs = append(errs, invalid("server.max_k must be greater than 0, got %d", sc.MaxK))
	}
	if sc.DefaultK <= 0 || (sc.MaxK > 0 && sc.DefaultK > sc.MaxK) {
		errs = append(errs, invalid("server.default_k must be between 1 and server.max_k, got %d", sc.DefaultK))
	}
	return errs
}
