// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package embed_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-dev/glimpse/internal/embed"
	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

func TestHealthTracker_RejectsNonPositiveCooldown(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		_, err := embed.NewHealthTracker(d)
		require.Error(t, err)
		assert.True(t, glimpseerr.IsInvalidInput(err))
	}
}

func TestHealthTracker_CooldownLifecycle(t *testing.T) {
	h, err := embed.NewHealthTracker(30 * time.Second)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.SetNowFunc(func() time.Time { return now })

	assert.True(t, h.IsHealthy(), "starts healthy")

	h.RecordFailure(errors.New("connection refused"))
	assert.False(t, h.IsHealthy())

	m := h.HealthMetrics()
	assert.Equal(t, int64(1), m.FailureCount)
	assert.Equal(t, "connection refused", m.LastError)
	require.NotNil(t, m.LastFailureAt)
	require.NotNil(t, m.CooldownUntil)
	assert.Equal(t, now.Add(30*time.Second), *m.CooldownUntil)
	assert.False(t, m.Available)

	now = now.Add(31 * time.Second)
	assert.True(t, h.IsHealthy(), "healthy again after cooldown")

	h.RecordSuccess()
	m = h.HealthMetrics()
	assert.Equal(t, int64(1), m.SuccessCount)
	assert.Nil(t, m.CooldownUntil)
	assert.True(t, m.Available)
}
