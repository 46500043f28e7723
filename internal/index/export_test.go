// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import "time"

// SetNowFunc overrides the manifest clock and returns a restore func.
func SetNowFunc(fn func() time.Time) func() {
	prev := nowFunc
	nowFunc = fn
	return func() { nowFunc = prev }
}
