// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package health

import "time"

// Metrics exposes the current health state of a remote model endpoint
// (captioner or embedder). All fields are point-in-time snapshots safe
// to serialize to JSON.
type Metrics struct {
	FailureCount  int64      `json:"failure_count"`
	SuccessCount  int64      `json:"success_count"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
	Available     bool       `json:"available"`
}
