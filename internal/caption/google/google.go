// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package google captions images with Gemini models.
package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/glimpse-dev/glimpse/internal/caption"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Config holds Google captioner configuration.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Captioner implements caption.Captioner using the Gemini API.
type Captioner struct {
	client *genai.Client
	config Config
}

// New creates a new Google captioner. Returns an error if the API key is missing.
func New(cfg Config) (*Captioner, error) {
	if cfg.APIKey == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "google captioner: missing api_key in config",
			glimpseerr.FieldProvider("google"))
	}
	if cfg.Model == "" {
		return nil, glimpseerr.New(glimpseerr.CodeCaptionRequestInvalid, "google captioner: missing model in config",
			glimpseerr.FieldProvider("google"))
	}
	if cfg.Prompt == "" {
		cfg.Prompt = caption.DefaultPrompt
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
		return nil, glimpseerr.Wrapf(err, glimpseerr.CodeCaptionUpstreamFailure, "google captioner: creating client")
	}
	return &Captioner{client: client, config: cfg}, nil
}

func (c *Captioner) Name() string { return "google" }

func (c *Captioner) Caption(ctx context.Context, img caption.Image) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(c.config.Prompt),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, contents, buildConfig(c.config))
	if err != nil {
		return "", glimpseerr.Wrap(err, glimpseerr.CodeCaptionUpstreamFailure, "google captioner: request failed",
			glimpseerr.FieldProvider("google"), glimpseerr.FieldModel(c.config.Model), glimpseerr.FieldPath(img.Path))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", glimpseerr.New(glimpseerr.CodeCaptionResponseInvalid, "google captioner: response has no text",
			glimpseerr.FieldProvider("google"), glimpseerr.FieldPath(img.Path))
	}
	return text, nil
}

// buildConfig converts captioner settings into a genai.GenerateContentConfig.
func buildConfig(cfg Config) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(cfg.Temperature)),
	}
	if cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.MaxTokens)
	}
	return gc
}
