// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package anthropic captions images with Claude through the Messages API.
package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// defaultMaxTokens applies when Config leaves MaxTokens unset; the Messages
// API requires a value.
const defaultMaxTokens = 500

// Config holds Anthropic captioner configuration.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Captioner implements caption.Captioner using the Anthropic Messages API.
type Captioner struct {
	client anthropicsdk.Client
	config Config
}

// New creates a new Anthropic captioner. Returns an error if the API key is missing.
func New(cfg Config) (*Captioner, error) {
	if cfg.APIKey == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "anthropic captioner: missing api_key in config",
			glimpseerr.FieldProvider("anthropic"))
	}
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "anthropic captioner: missing model in config",
			glimpseerr.FieldProvider("anthropic"))
	}
	if cfg.Prompt == "" {
		cfg.Prompt = caption.DefaultPrompt
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Captioner{client: anthropicsdk.NewClient(opts...), config: cfg}, nil
}

func (c *Captioner) Name() string { return "anthropic" }

func (c *Captioner) Caption(ctx context.Context, img caption.Image) (string, error) {
	resp, err := c.client.Messages.New(ctx, buildParams(c.config, img))
	if err != nil {
		return "", glimpseerr.Wrap(err, glimpseerr.CodeCaptionUpstreamFailure, "anthropic captioner: request failed",
			glimpseerr.FieldProvider("anthropic"), glimpseerr.FieldModel(c.config.Model), glimpseerr.FieldPath(img.Path))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", glimpseerr.New(glimpseerr.CodeCaptionResponseInvalid, "anthropic captioner: response has no text",
			glimpseerr.FieldProvider("anthropic"), glimpseerr.FieldPath(img.Path))
	}
	return strings.TrimSpace(sb.String()), nil
}

// buildParams places the image before the prompt, as Anthropic recommends for
// vision requests.
func buildParams(cfg Config, img caption.Image) anthropicsdk.MessageNewParams {
	return anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(cfg.Model),
		MaxTokens: int64(cfg.MaxTokens),
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(
				anthropicsdk.NewImageBlockBase64(img.MIMEType, img.Base64()),
				anthropicsdk.NewTextBlock(cfg.Prompt),
			),
		},
		Temperature: anthropicsdk.Float(cfg.Temperature),
	}
}
