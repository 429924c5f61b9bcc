// Package vector provides vector indexes and similarity search.
package vector

import "context"

// Index maps chunk ids to vectors and answers nearest-neighbor lookups.
type Index interface {
	// Upsert inserts or replaces the vector for id. A replaced entry keeps its
	// original insertion position.
	Upsert(ctx context.Context, id string, vec []float32) error
	// Search returns at most min(k, Size()) results ordered by score descending,
	// ties by insertion order. An empty index or k <= 0 yields no results.
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Remove(ctx context.Context, ids []string) error
	Reset()
	Size() int
	Close() error
}

// Result is a single vector search hit (ID is the chunk id).
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
