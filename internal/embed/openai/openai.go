// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package openai embeds text through any OpenAI-compatible /v1/embeddings
// endpoint, including local servers such as LM Studio.
package openai

import (
	"context"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config holds OpenAI-compatible embedder configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions requests a reduced output size from models that support it.
	// Zero leaves the model default.
	Dimensions int
	HTTPClient *http.Client
}

// Embedder implements embed.Embedder against the embeddings endpoint.
type Embedder struct {
	client openaisdk.Client
	config Config
}

// New creates an embedder. A local endpoint needs no API key, but at least
// one of APIKey or BaseURL must be set so requests never reach the public
// API unauthenticated.
func New(cfg Config) (*Embedder, error) {
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "openai embedder: missing model in config",
			glimpseerr.FieldProvider("openai"))
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "openai embedder: api_key or endpoint is required",
			glimpseerr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(withTrailingSlash(cfg.BaseURL)))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Embedder{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

func (e *Embedder) Name() string  { return "openai" }
func (e *Embedder) Model() string { return e.config.Model }

// Embed requests a single embedding for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "openai embedder: empty input",
			glimpseerr.FieldProvider("openai"))
	}

	params := openaisdk.EmbeddingNewParams{
		Model:          e.config.Model,
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfString: param.NewOpt(text)},
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.config.Dimensions > 0 {
		params.Dimensions = openaisdk.Int(int64(e.config.Dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeEmbedUpstreamFailure, "openai embedder: request failed",
			glimpseerr.FieldProvider("openai"), glimpseerr.FieldModel(e.config.Model))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedResponseInvalid, "openai embedder: response carried no embedding",
			glimpseerr.FieldProvider("openai"), glimpseerr.FieldModel(e.config.Model))
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
