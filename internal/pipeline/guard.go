package pipeline

import (
	"context"
	"sync"

	"github.com/hyperjump/ragbench/internal/models"
)

// Guarded serializes mutations of a Pipeline shared by the HTTP server and the directory
// watcher. Answer and Stats hold the read lock, so they never observe a half-ingested document.
type Guarded struct {
	mu sync.RWMutex
	p  *Pipeline
}

// NewGuarded wraps p.
func NewGuarded(p *Pipeline) *Guarded {
	return &Guarded{p: p}
}

// Ingest chunks and indexes content under the write lock.
func (g *Guarded) Ingest(ctx context.Context, docID, content string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p.Ingest(ctx, docID, content)
}

// Replace drops docID's chunks and ingests content in one critical section.
func (g *Guarded) Replace(ctx context.Context, docID, content string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p.Replace(ctx, docID, content)
}

// Delete removes every chunk of docID.
func (g *Guarded) Delete(ctx context.Context, docID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p.Delete(ctx, docID)
}

// Reset empties the indexes and the chunk store.
func (g *Guarded) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p.Reset(ctx)
}

// Restore rebuilds the indexes from the chunk store.
func (g *Guarded) Restore(ctx context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p.Restore(ctx)
}

// Answer runs retrieval and generation under the read lock.
func (g *Guarded) Answer(ctx context.Context, query string, topK, topN int) (*models.AnswerResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.p.Answer(ctx, query, topK, topN)
}

// Stats reports index sizes under the read lock.
func (g *Guarded) Stats(ctx context.Context) (*models.IndexStats, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.p.Stats(ctx)
}

// Provider names the answer generator. The generator is fixed at construction.
func (g *Guarded) Provider() string {
	return g.p.Provider()
}
