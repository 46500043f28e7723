// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package google embeds text with the Gemini embedding models.
package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config holds Google embedder configuration.
type Config struct {
	APIKey     string
	BaseURL    string // optional, useful for testing against a mock server
	Model      string
	Dimensions int
}

// Embedder implements embed.Embedder using the Gemini API.
type Embedder struct {
	client *genai.Client
	config Config
}

// New creates a new Google embedder. Returns an error if the API key is missing.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "google embedder: missing api_key in config",
			glimpseerr.FieldProvider("google"))
	}
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "google embedder: missing model in config",
			glimpseerr.FieldProvider("google"))
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeEmbedUpstreamFailure, "google embedder: creating client")
	}
	return &Embedder{client: client, config: cfg}, nil
}

func (e *Embedder) Name() string  { return "google" }
func (e *Embedder) Model() string { return e.config.Model }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "google embedder: empty input",
			glimpseerr.FieldProvider("google"))
	}

	var cfg *genai.EmbedContentConfig
	if e.config.Dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(e.config.Dimensions))}
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.config.Model, genai.Text(text), cfg)
	if err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeEmbedUpstreamFailure, "google embedder: request failed",
			glimpseerr.FieldProvider("google"), glimpseerr.FieldModel(e.config.Model))
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedResponseInvalid, "google embedder: response carried no embedding",
			glimpseerr.FieldProvider("google"), glimpseerr.FieldModel(e.config.Model))
	}
	return resp.Embeddings[0].Values, nil
}
