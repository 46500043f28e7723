// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"context"

	"github.com/glimpse-dev/glimpse/internal/caption"
	anthropiccap "github.com/glimpse-dev/glimpse/internal/caption/anthropic"
	googlecap "github.com/glimpse-dev/glimpse/internal/caption/google"
	openaicap "github.com/glimpse-dev/glimpse/internal/caption/openai"
	"github.com/glimpse-dev/glimpse/internal/config"
	"github.com/glimpse-dev/glimpse/internal/embed"
	googleemb "github.com/glimpse-dev/glimpse/internal/embed/google"
	"github.com/glimpse-dev/glimpse/internal/embed/hashing"
	openaiemb "github.com/glimpse-dev/glimpse/internal/embed/openai"
	"github.com/glimpse-dev/glimpse/internal/index"
	_ "github.com/glimpse-dev/glimpse/internal/index/sqlite" // register sqlite backend
	"github.com/glimpse-dev/glimpse/internal/search"
	"github.com/glimpse-dev/glimpse/internal/server"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Constructors are package variables so command tests can substitute fakes.
var (
	newCaptioner     = buildCaptioner
	newImageEmbedder = buildImageEmbedder
	newEmbedder      = buildEmbedder
)

func buildCaptioner(cfg *config.Config) (caption.Captioner, error) {
	cc := cfg.Captioner
	switch cc.Provider {
	case "openai":
		return openaicap.New(openaicap.Config{
			APIKey:      cc.APIKey,
			BaseURL:     cc.Endpoint,
			Model:       cc.Model,
			Prompt:      cc.Prompt,
			Temperature: cc.Temperature,
			MaxTokens:   cc.MaxTokens,
		})
	case "anthropic":
		return anthropiccap.New(anthropiccap.Config{
			APIKey:      cc.APIKey,
			BaseURL:     cc.Endpoint,
			Model:       cc.Model,
			Prompt:      cc.Prompt,
			Temperature: cc.Temperature,
			MaxTokens:   cc.MaxTokens,
		})
	case "google":
		return googlecap.New(googlecap.Config{
			APIKey:      cc.APIKey,
			BaseURL:     cc.Endpoint,
			Model:       cc.Model,
			Prompt:      cc.Prompt,
			Temperature: cc.Temperature,
			MaxTokens:   cc.MaxTokens,
		})
	default:
		return nil, glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure, "unknown captioner provider %q", cc.Provider)
	}
}

// buildImageEmbedder returns nil when image embedding is disabled.
func buildImageEmbedder(cfg *config.Config) (caption.ImageEmbedder, error) {
	ie := cfg.Captioner.ImageEmbedding
	if !ie.Enabled {
		return nil, nil
	}
	return openaicap.NewImageEmbedder(openaicap.ImageEmbedderConfig{
		APIKey:  ie.APIKey,
		BaseURL: ie.Endpoint,
		Model:   ie.Model,
	})
}

func buildEmbedder(cfg *config.Config) (embed.Embedder, error) {
	ec := cfg.Embedder
	switch ec.Provider {
	case "openai":
		return openaiemb.New(openaiemb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.Endpoint,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		})
	case "google":
		return googleemb.New(googleemb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.Endpoint,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
		})
	case "hashing":
		return hashing.New(ec.Dimensions)
	default:
		return nil, glimpseerr.Errorf(glimpseerr.CodeEmbedProviderNotFound, "unknown embedder provider %q", ec.Provider)
	}
}

// trackedEmbedder wraps the configured embedder with health tracking.
func trackedEmbedder(cfg *config.Config) (*embed.Tracked, error) {
	e, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	h, err := embed.NewHealthTracker(embed.DefaultHealthCooldown)
	if err != nil {
		return nil, err
	}
	return embed.Track(e, h), nil
}

func captionIndexConfig(cfg *config.Config) index.Config {
	return index.Config{
		Backend:      cfg.Index.Backend,
		Dir:          cfg.Index.Dir,
		File:         cfg.Index.File,
		PathsFile:    cfg.Index.PathsFile,
		ManifestFile: cfg.Index.ManifestFile,
		SQLiteFile:   cfg.Index.SQLiteFile,
	}
}

// imageIndexConfig locates the image vector index, always a flat index next
// to the caption index.
func imageIndexConfig(cfg *config.Config) index.Config {
	return index.Config{
		Backend:   "flat",
		Dir:       cfg.Index.Dir,
		File:      cfg.Captioner.ImageEmbedding.IndexFile,
		PathsFile: cfg.Captioner.ImageEmbedding.PathsFile,
	}
}

// openSearchService loads captions and the caption index. The returned
// index must be closed by the caller.
func openSearchService(ctx context.Context, cfg *config.Config) (*search.Service, index.Searcher, error) {
	captions, err := caption.LoadCaptions(cfg.Data.CaptionsFile)
	if err != nil {
		return nil, nil, err
	}

	e, err := trackedEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	idx, err := index.Open(ctx, captionIndexConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	if m := idx.Manifest(); m != nil && (m.Embedder != e.Name() || m.Model != e.Model()) {
		_ = idx.Close()
		return nil, nil, glimpseerr.Errorf(glimpseerr.CodeCLISetupFailure,
			"index was built with %s/%s but the configured embedder is %s/%s; run 'glimpse index' again",
			m.Embedder, m.Model, e.Name(), e.Model())
	}

	return search.New(e, idx, captions), idx, nil
}

func newServer(cfg *config.Config, svc server.SearchService) (*server.Server, error) {
	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
		ImageDir:    cfg.Data.ImageDir,
		DefaultK:    cfg.Server.DefaultK,
		MaxK:        cfg.Server.MaxK,
		Version:     version,
	})
	if err != nil {
		return nil, err
	}
	srv.RegisterServices(svc)
	return srv, nil
}
