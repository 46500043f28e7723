// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package embed

import (
	"sync"
	"time"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
	"github.com/glimpse-dev/glimpse/pkg/health"
)

// DefaultHealthCooldown is how long an endpoint is reported unavailable
// after its most recent failure.
const DefaultHealthCooldown = 30 * time.Second

// HealthTracker keeps simple health state for a remote embedding endpoint.
// An endpoint is healthy until RecordFailure is called. After a failure it is
// reported unavailable for a cooldown period, then available again.
//
// The tracker only reports; it never blocks calls.
type HealthTracker struct {
	mu           sync.RWMutex
	healthy      bool
	failedAt     time.Time
	lastErr      string
	cooldown     time.Duration
	failureCount int64
	successCount int64
	nowFunc      func() time.Time
}

// NewHealthTracker creates a HealthTracker that starts healthy.
// Returns an error if cooldown is zero or negative.
func NewHealthTracker(cooldown time.Duration) (*HealthTracker, error) {
	if cooldown <= 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeConfigValidateInvalidValue,
			"health tracker cooldown must be positive, got %s", cooldown)
	}
	return &HealthTracker{
		healthy:  true,
		cooldown: cooldown,
		nowFunc:  time.Now,
	}, nil
}

// isHealthyLocked reports whether the endpoint is healthy or the cooldown
// has elapsed. The caller MUST hold at least h.mu.RLock.
func (h *HealthTracker) isHealthyLocked() bool {
	if h.healthy {
		return true
	}
	return h.nowFunc().Sub(h.failedAt) >= h.cooldown
}

// IsHealthy returns true if the endpoint is healthy or the cooldown has elapsed.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isHealthyLocked()
}

// RecordSuccess marks the endpoint as healthy.
func (h *HealthTracker) RecordSuccess() {
	h.mu.Lock()
	h.healthy = true
	h.successCount++
	h.mu.Unlock()
}

// RecordFailure marks the endpoint as unhealthy and keeps err's message for
// status reporting.
func (h *HealthTracker) RecordFailure(err error) {
	h.mu.Lock()
	h.healthy = false
	h.failedAt = h.nowFunc()
	h.failureCount++
	if err != nil {
		h.lastErr = err.Error()
	}
	h.mu.Unlock()
}

// SetNowFunc overrides the time source (for testing).
func (h *HealthTracker) SetNowFunc(fn func() time.Time) {
	h.mu.Lock()
	h.nowFunc = fn
	h.mu.Unlock()
}

// HealthMetrics returns a point-in-time snapshot of the tracker's state.
func (h *HealthTracker) HealthMetrics() health.Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := health.Metrics{
		FailureCount: h.failureCount,
		SuccessCount: h.successCount,
		LastError:    h.lastErr,
	}

	if h.failureCount > 0 {
		t := h.failedAt
		m.LastFailureAt = &t
	}

	m.Available = h.isHealthyLocked()
	if !h.healthy {
		cooldownEnd := h.failedAt.Add(h.cooldown)
		m.CooldownUntil = &cooldownEnd
	}
	return m
}
