// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package config

import "strings"

// KeyringScheme prefixes API key values that live in the OS keyring.
const KeyringScheme = "keyring://"

// APIKeyFields maps each API key setting to a pointer into c, so callers can
// resolve keyring references in place.
func (c *Config) APIKeyFields() map[string]*string {
	return map[string]*string{
		"captioner.api_key":                 &c.Captioner.APIKey,
		"captioner.image_embedding.api_key": &c.Captioner.ImageEmbedding.APIKey,
		"embedder.api_key":                  &c.Embedder.APIKey,
	}
}

// PlaintextKeyFields lists API key settings holding a literal key rather
// than a keyring reference.
func (c *Config) PlaintextKeyFields() []string {
	var out []string
	for _, name := range []string{"captioner.api_key", "captioner.image_embedding.api_key", "embedder.api_key"} {
		v := *c.APIKeyFields()[name]
		if v != "" && !strings.HasPrefix(v, KeyringScheme) {
			out = append(out, name)
		}
	}
	return out
}
