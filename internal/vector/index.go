// Package vector provides vector index and similarity search.
package vector

import "context"

// VectorIndex is an append-only store of fixed-dimension vectors. Row i is the
// i-th vector ever added; rows are never reordered.
type VectorIndex interface {
	// Add appends vector and returns its row position.
	Add(ctx context.Context, vector []float32) (int, error)
	// Search returns up to k rows by descending inner product.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	// Truncate drops every row at position >= n.
	Truncate(n int) error
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	Position int
	Score    float64 // Inner product; cosine similarity in [-1, 1] for normalized vectors
}
