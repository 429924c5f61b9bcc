// Package storage owns the chunk table: chunk id to text, per document.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/ragbench/internal/models"
)

// ErrNotFound is returned when a chunk id is not stored.
var ErrNotFound = errors.New("chunk not found")

// ChunkStore persists chunks keyed by id. Implementations are safe for concurrent
// readers with a single writer.
type ChunkStore interface {
	// PutChunks inserts or replaces chunks. A replaced chunk keeps its original position.
	PutChunks(ctx context.Context, chunks []models.Chunk) error
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	// GetChunks returns the stored chunks among ids; missing ids are absent from the map.
	GetChunks(ctx context.Context, ids []string) (map[string]models.Chunk, error)
	ChunksByDocument(ctx context.Context, docID string) ([]models.Chunk, error)
	// NextIndex returns one past the highest chunk index stored for docID, or 0.
	NextIndex(ctx context.Context, docID string) (int, error)
	// DeleteDocument removes a document's chunks and returns their ids.
	DeleteDocument(ctx context.Context, docID string) ([]string, error)
	// AllChunks returns every chunk in insertion order.
	AllChunks(ctx context.Context) ([]models.Chunk, error)
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
	Close() error
}

// Open returns a SQLite store for a non-empty path and a memory store otherwise.
func Open(path string) (ChunkStore, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(path)
}
