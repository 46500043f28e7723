// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package openai captions images through an OpenAI-compatible Chat
// Completions endpoint. The default target is a local LM Studio server
// hosting LLaVA.
package openai

import (
	"context"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config holds OpenAI-compatible captioner configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Captioner implements caption.Captioner using Chat Completions.
type Captioner struct {
	client openaisdk.Client
	config Config
}

// New creates a captioner. A local endpoint needs no API key, but at least
// one of APIKey or BaseURL must be set.
func New(cfg Config) (*Captioner, error) {
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "openai captioner: missing model in config",
			glimpseerr.FieldProvider("openai"))
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "openai captioner: api_key or endpoint is required",
			glimpseerr.FieldProvider("openai"))
	}
	if cfg.Prompt == "" {
		cfg.Prompt = caption.DefaultPrompt
	}
	return &Captioner{client: newClient(cfg.APIKey, cfg.BaseURL, cfg.HTTPClient), config: cfg}, nil
}

func newClient(apiKey, baseURL string, hc *http.Client) openaisdk.Client {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return openaisdk.NewClient(opts...)
}

func (c *Captioner) Name() string { return "openai" }

// Caption sends the prompt and the image as a data URL in one user message.
func (c *Captioner) Caption(ctx context.Context, img caption.Image) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, buildParams(c.config, img))
	if err != nil {
		return "", glimpseerr.Wrap(err, glimpseerr.CodeCaptionUpstreamFailure, "openai captioner: request failed",
			glimpseerr.FieldProvider("openai"), glimpseerr.FieldModel(c.config.Model), glimpseerr.FieldPath(img.Path))
	}
	if len(resp.Choices) == 0 {
		return "", glimpseerr.New(glimpseerr.CodeCaptionResponseInvalid, "openai captioner: response has no choices",
			glimpseerr.FieldProvider("openai"), glimpseerr.FieldPath(img.Path))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildParams(cfg Config, img caption.Image) openaisdk.ChatCompletionNewParams {
	parts := []openaisdk.ChatCompletionContentPartUnionParam{
		openaisdk.TextContentPart(cfg.Prompt),
		openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}),
	}
	msg := openaisdk.ChatCompletionUserMessageParam{
		Content: openaisdk.ChatCompletionUserMessageParamContentUnion{
			OfArrayOfContentParts: parts,
		},
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(cfg.Model),
		Messages:    []openaisdk.ChatCompletionMessageParamUnion{{OfUser: &msg}},
		Temperature: openaisdk.Float(cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(cfg.MaxTokens))
	}
	return params
}
