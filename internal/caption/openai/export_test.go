// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package openai

import (
	openaisdk "github.com/openai/openai-go"

	"github.com/glimpse-dev/glimpse/internal/caption"
)

// BuildParams exposes buildParams for white-box testing.
var BuildParams = func(cfg Config, img caption.Image) openaisdk.ChatCompletionNewParams {
	return buildParams(cfg, img)
}
