// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package openai

import (
	"context"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// ImageEmbedderConfig configures an embeddings endpoint that accepts image
// data URLs as input, as CLIP-serving OpenAI-compatible servers do.
type ImageEmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// ImageEmbedder implements caption.ImageEmbedder.
type ImageEmbedder struct {
	client openaisdk.Client
	config ImageEmbedderConfig
}

// NewImageEmbedder creates an image embedder.
func NewImageEmbedder(cfg ImageEmbedderConfig) (*ImageEmbedder, error) {
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "image embedder: missing model in config",
			glimpseerr.FieldProvider("openai"))
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "image embedder: api_key or endpoint is required",
			glimpseerr.FieldProvider("openai"))
	}
	return &ImageEmbedder{client: newClient(cfg.APIKey, cfg.BaseURL, cfg.HTTPClient), config: cfg}, nil
}

func (e *ImageEmbedder) Name() string  { return "openai" }
func (e *ImageEmbedder) Model() string { return e.config.Model }

func (e *ImageEmbedder) EmbedImage(ctx context.Context, img caption.Image) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model:          e.config.Model,
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfString: param.NewOpt(img.DataURL())},
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, glimpseerr.Wrap(err, glimpseerr.CodeCaptionUpstreamFailure, "image embedder: request failed",
			glimpseerr.FieldModel(e.config.Model), glimpseerr.FieldPath(img.Path))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionResponseInvalid, "image embedder: response carried no embedding",
			glimpseerr.FieldPath(img.Path))
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
