// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package google

import "google.golang.org/genai"

// BuildConfig exposes buildConfig for white-box testing.
var BuildConfig = func(cfg Config) *genai.GenerateContentConfig {
	return buildConfig(cfg)
}
