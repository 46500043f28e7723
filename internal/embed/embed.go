// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

// Package embed defines the text embedding provider contract shared by the
// caption indexer and the query service.
//
// The same Embedder (same provider, same model) must be used at index build
// time and at query time; vectors from different models are not comparable.
package embed

import (
	"context"

	"github.com/glimpse-dev/glimpse/pkg/health"
)

// Embedder converts text into a dense float32 vector.
//
// A failed call returns a non-nil error and a nil vector. Callers embedding
// a batch must skip the failed item rather than abort the batch.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
	Model() string
}

// Tracked wraps an Embedder and records every call outcome in a HealthTracker.
type Tracked struct {
	Embedder
	health *HealthTracker
}

// Track wraps e so that successes and failures are recorded in h.
func Track(e Embedder, h *HealthTracker) *Tracked {
	return &Tracked{Embedder: e, health: h}
}

func (t *Tracked) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := t.Embedder.Embed(ctx, text)
	if err != nil {
		t.health.RecordFailure(err)
		return nil, err
	}
	t.health.RecordSuccess()
	return vec, nil
}

// Health returns a snapshot of the wrapped embedder's health.
func (t *Tracked) Health() health.Metrics {
	return t.health.HealthMetrics()
}
