// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package server

import (
	"context"

	"github.com/glimpse-dev/glimpse/internal/search"
)

// SearchService answers queries for the search and status routes.
// *search.Service satisfies it.
type SearchService interface {
	Search(ctx context.Context, query string, k int) []search.Result
	Status() search.Status
}

var _ SearchService = (*search.Service)(nil)
