// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package hashing is an offline embedder that needs no model server.
//
// Each lowercase word token is hashed with 64-bit FNV-1a into one of Dim
// buckets; the top hash bit picks the sign. The resulting vector is
// L2-normalized, so texts sharing words land close together.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// DefaultDimensions is used when Config leaves the size unset.
const DefaultDimensions = 384

// Embedder implements embed.Embedder with signed feature hashing.
type Embedder struct {
	dim int
}

// New returns a hashing embedder producing dim-length vectors.
func New(dim int) (*Embedder, error) {
	if dim == 0 {
		dim = DefaultDimensions
	}
	if dim < 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeEmbedInputInvalid,
			"hashing embedder: dimensions must be positive, got %d", dim)
	}
	return &Embedder{dim: dim}, nil
}

func (e *Embedder) Name() string  { return "hashing" }
func (e *Embedder) Model() string { return "fnv1a-bow" }

// Dim returns the output vector length.
func (e *Embedder) Dim() int { return e.dim }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, glimpseerr.New(glimpseerr.CodeEmbedInputInvalid, "hashing embedder: no tokens in input",
			glimpseerr.FieldProvider("hashing"))
	}

	vec := make([]float32, e.dim)
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := sum % uint64(e.dim)
		if sum>>63 == 1 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// Every token cancelled out; the zero vector is still a valid point.
		return vec, nil
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}

// Tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
