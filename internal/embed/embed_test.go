// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package embed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/embed"
)

type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) Name() string  { return "stub" }
func (s *stubEmbedder) Model() string { return "stub-model" }

func TestTracked_RecordsOutcomes(t *testing.T) {
	h, err := embed.NewHealthTracker(embed.DefaultHealthCooldown)
	require.NoError(t, err)

	stub := &stubEmbedder{}
	tr := embed.Track(stub, h)
	assert.Equal(t, "stub", tr.Name())
	assert.Equal(t, "stub-model", tr.Model())

	vec, err := tr.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	stub.fail = true
	vec, err = tr.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Nil(t, vec)

	m := tr.Health()
	assert.Equal(t, int64(1), m.SuccessCount)
	assert.Equal(t, int64(1), m.FailureCount)
	assert.Equal(t, "boom", m.LastError)
	assert.False(t, m.Available)
}
