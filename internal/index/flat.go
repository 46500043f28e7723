// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package index

import (
	"cmp"
	"slices"

	glimpseerr "github.com/glimpse-dev/glimpse/pkg/errors"
)

// Flat is an exact brute-force index over squared L2 distance. Vectors are
// stored row-major in insertion order; row i is the i-th Add.
//
// A Flat is not safe for concurrent mutation. Once built it is read-only and
// Search may be called from many goroutines.
type Flat struct {
	dim  int
	data []float32
}

// NewFlat returns an empty index for dim-length vectors.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexDimensionMismatch, "index dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the vector length.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.data) / f.dim }

// Add appends vec as the next row.
func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return glimpseerr.Errorf(glimpseerr.CodeIndexDimensionMismatch,
			"vector has %d dimensions, index expects %d", len(vec), f.dim)
	}
	f.data = append(f.data, vec...)
	return nil
}

// Row returns a view of the stored vector at row i.
func (f *Flat) Row(i int) []float32 {
	return f.data[i*f.dim : (i+1)*f.dim : (i+1)*f.dim]
}

// Search returns the min(k, Len) rows closest to query, ordered by ascending
// squared L2 distance with ties broken by lower row. k <= 0 returns nothing.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, glimpseerr.Errorf(glimpseerr.CodeIndexQueryInvalid,
			"query has %d dimensions, index expects %d", len(query), f.dim)
	}
	n := f.Len()
	if k <= 0 || n == 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, n)
	for i := range n {
		hits[i] = Hit{Row: i, Distance: SquaredL2(query, f.Row(i))}
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})

	if k < n {
		hits = hits[:k]
	}
	return hits, nil
}

// SquaredL2 returns the squared Euclidean distance between equal-length
// vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
