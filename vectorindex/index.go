// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vectorindex

import (
	"cmp"
	"fmt"
	"slices"
)

// Index is a flat in-memory inner-product index with a fixed dimension.
// It is not safe for concurrent mutation.
type Index struct {
	dim  int
	data []float32
}

// Hit is one search result.
type Hit struct {
	Position int
	Score    float32
}

// New creates an empty index for vectors of width dim.
func New(dim int) (*Index, error) {
	if dim < 1 {
		return nil, ErrInvalidDimension
	}
	return &Index{dim: dim}, nil
}

// Dim returns the vector width.
func (idx *Index) Dim() int {
	return idx.dim
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	return len(idx.data) / idx.dim
}

// Add appends vectors in order. Every vector is checked before any is
// stored, so a mismatch leaves the index unchanged.
func (idx *Index) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != idx.dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, index has %d", ErrDimensionMismatch, i, len(v), idx.dim)
		}
	}
	idx.data = slices.Grow(idx.data, len(vectors)*idx.dim)
	for _, v := range vectors {
		idx.data = append(idx.data, v...)
	}
	return nil
}

// Vector returns the vector at position i. The slice aliases index storage.
func (idx *Index) Vector(i int) []float32 {
	return idx.data[i*idx.dim : (i+1)*idx.dim : (i+1)*idx.dim]
}

// Search returns the k positions with the highest inner product to query,
// best first. Ties keep insertion order.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(query), idx.dim)
	}

	hits := make([]Hit, idx.Len())
	for i := range hits {
		var score float32
		for j, x := range idx.Vector(i) {
			score += x * query[j]
		}
		hits[i] = Hit{Position: i, Score: score}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k >= 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
