package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/ragbench/internal/models"
)

// MemoryStore is an in-process ChunkStore.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []string
	chunks map[string]models.Chunk
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]models.Chunk)}
}

// PutChunks inserts or replaces chunks.
func (s *MemoryStore) PutChunks(ctx context.Context, chunks []models.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if _, ok := s.chunks[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.chunks[c.ID] = c
	}
	return nil
}

// GetChunk returns a chunk by id.
func (s *MemoryStore) GetChunk(_ context.Context, id string) (*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &c, nil
}

// GetChunks returns the stored chunks among ids.
func (s *MemoryStore) GetChunks(_ context.Context, ids []string) (map[string]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Chunk, len(ids))
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// ChunksByDocument returns a document's chunks in insertion order.
func (s *MemoryStore) ChunksByDocument(_ context.Context, docID string) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Chunk
	for _, id := range s.order {
		if c := s.chunks[id]; c.DocumentID == docID {
			out = append(out, c)
		}
	}
	return out, nil
}

// NextIndex returns one past the highest stored index for docID.
func (s *MemoryStore) NextIndex(_ context.Context, docID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, c := range s.chunks {
		if c.DocumentID == docID && c.Index >= next {
			next = c.Index + 1
		}
	}
	return next, nil
}

// DeleteDocument removes a document's chunks.
func (s *MemoryStore) DeleteDocument(_ context.Context, docID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	kept := s.order[:0]
	for _, id := range s.order {
		if s.chunks[id].DocumentID == docID {
			removed = append(removed, id)
			delete(s.chunks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// AllChunks returns every chunk in insertion order.
func (s *MemoryStore) AllChunks(_ context.Context) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chunk, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.chunks[id])
	}
	return out, nil
}

// CountDocuments returns the number of distinct documents.
func (s *MemoryStore) CountDocuments(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make(map[string]struct{})
	for _, c := range s.chunks {
		docs[c.DocumentID] = struct{}{}
	}
	return int64(len(docs)), nil
}

// CountChunks returns the number of chunks.
func (s *MemoryStore) CountChunks(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// Reset removes every chunk.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.chunks = make(map[string]models.Chunk)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
