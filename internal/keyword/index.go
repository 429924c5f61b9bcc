// Package keyword provides a BM25 keyword index over chunk text, used as a second
// candidate source next to the vector index.
package keyword

import (
	"context"

	"github.com/hyperjump/ragbench/internal/models"
)

// ChunkIndex defines keyword indexing and search over chunks.
type ChunkIndex interface {
	IndexChunks(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Delete(ctx context.Context, ids []string) error
	Reset(ctx context.Context) error
	// DocCount returns the number of indexed chunks.
	DocCount() (uint64, error)
	Close() error
}

// Result is a single keyword search hit (ID is the chunk id).
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
