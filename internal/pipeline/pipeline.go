// Package pipeline orchestrates ingestion and question answering: chunk, embed and
// index documents, then retrieve, rerank and answer with citations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/ragbench/internal/answer"
	"github.com/hyperjump/ragbench/internal/chunking"
	"github.com/hyperjump/ragbench/internal/embedding"
	"github.com/hyperjump/ragbench/internal/keyword"
	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/internal/rerank"
	"github.com/hyperjump/ragbench/internal/storage"
	"github.com/hyperjump/ragbench/internal/vector"
	"github.com/hyperjump/ragbench/pkg/utils"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned for an empty document id or query, or counts below 1.
var ErrInvalidRequest = errors.New("invalid request")

// restoreBatchSize bounds how many chunk texts Restore embeds per call.
const restoreBatchSize = 64

// Deps are the components the pipeline drives. Store defaults to a memory store;
// a nil Keyword index disables keyword fusion.
type Deps struct {
	Embedder  embedding.Embedder
	Index     vector.Index
	Reranker  rerank.Reranker
	Generator answer.Generator
	Store     storage.ChunkStore
	Keyword   keyword.ChunkIndex
}

// Options are the pipeline's tunables.
type Options struct {
	Chunk          chunking.Config
	KeywordWeight  float64
	SemanticWeight float64
}

// Recorder receives ingestion and answer events.
type Recorder interface {
	ChunksIngested(n int)
	AnswerServed(provider string, degraded bool, elapsed time.Duration)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for debug output (document ingested, answer served, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// Pipeline owns the chunk store and indexes. It does not serialize mutating calls;
// callers that ingest concurrently must hold their own lock.
type Pipeline struct {
	embedder  embedding.Embedder
	index     vector.Index
	reranker  rerank.Reranker
	generator answer.Generator
	store     storage.ChunkStore
	keyword   keyword.ChunkIndex
	opts      Options
	logger    *zap.Logger
	recorder  Recorder
}

// New validates the chunking options and wires the components.
func New(deps Deps, opts Options, options ...Option) (*Pipeline, error) {
	if deps.Embedder == nil || deps.Index == nil || deps.Reranker == nil || deps.Generator == nil {
		return nil, fmt.Errorf("pipeline: embedder, index, reranker and generator are required")
	}
	if err := opts.Chunk.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		deps.Store = storage.NewMemoryStore()
	}
	if opts.KeywordWeight == 0 && opts.SemanticWeight == 0 {
		opts.KeywordWeight, opts.SemanticWeight = 0.5, 0.5
	}
	p := &Pipeline{
		embedder:  deps.Embedder,
		index:     deps.Index,
		reranker:  deps.Reranker,
		generator: deps.Generator,
		store:     deps.Store,
		keyword:   deps.Keyword,
		opts:      opts,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = utils.OrNop(p.logger)
	return p, nil
}

// Ingest chunks, embeds and indexes content under docID and returns the number of
// chunks added. Re-ingesting an existing id appends: indices continue after the
// highest stored index, so earlier chunks are never overwritten.
func (p *Pipeline) Ingest(ctx context.Context, docID, content string) (int, error) {
	if strings.TrimSpace(docID) == "" {
		return 0, fmt.Errorf("%w: document id cannot be empty", ErrInvalidRequest)
	}
	texts, err := chunking.Chunk(content, p.opts.Chunk)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		p.logger.Debug("document has no text, nothing ingested", zap.String("doc_id", docID))
		return 0, nil
	}

	start, err := p.store.NextIndex(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("failed to read chunk indices: %w", err)
	}
	vecs, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vecs) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(texts))
	}

	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		idx := start + i
		chunks[i] = models.Chunk{ID: models.ChunkID(docID, idx), DocumentID: docID, Index: idx, Text: text}
	}
	if err := p.store.PutChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}
	for i, c := range chunks {
		if err := p.index.Upsert(ctx, c.ID, vecs[i]); err != nil {
			return 0, fmt.Errorf("failed to index vector %s: %w", c.ID, err)
		}
	}
	if p.keyword != nil {
		if err := p.keyword.IndexChunks(ctx, chunks); err != nil {
			return 0, fmt.Errorf("failed to index keywords: %w", err)
		}
	}

	if p.recorder != nil {
		p.recorder.ChunksIngested(len(chunks))
	}
	p.logger.Debug("document ingested",
		zap.String("doc_id", docID), zap.Int("chunks", len(chunks)), zap.Int("first_index", start))
	return len(chunks), nil
}

// Replace removes every chunk of docID from the store and indexes, then ingests content
// with indices starting at 0.
func (p *Pipeline) Replace(ctx context.Context, docID, content string) (int, error) {
	if err := p.Delete(ctx, docID); err != nil {
		return 0, err
	}
	return p.Ingest(ctx, docID, content)
}

// Delete removes every chunk of docID. Unknown ids are a no-op.
func (p *Pipeline) Delete(ctx context.Context, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return fmt.Errorf("%w: document id cannot be empty", ErrInvalidRequest)
	}
	ids, err := p.store.DeleteDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := p.index.Remove(ctx, ids); err != nil {
		return fmt.Errorf("failed to remove vectors: %w", err)
	}
	if p.keyword != nil {
		if err := p.keyword.Delete(ctx, ids); err != nil {
			return fmt.Errorf("failed to remove keywords: %w", err)
		}
	}
	p.logger.Debug("document deleted", zap.String("doc_id", docID), zap.Int("chunks", len(ids)))
	return nil
}

// Answer retrieves topK candidates for query, reranks them to topN evidence passages
// and generates a cited answer.
func (p *Pipeline) Answer(ctx context.Context, query string, topK, topN int) (*models.AnswerResult, error) {
	started := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidRequest)
	}
	if topK < 1 || topN < 1 {
		return nil, fmt.Errorf("%w: top_k and top_n must be >= 1, got %d and %d", ErrInvalidRequest, topK, topN)
	}

	candidateIDs, err := p.retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	stored, err := p.store.GetChunks(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	ids := make([]string, 0, len(candidateIDs))
	passages := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		c, ok := stored[id]
		if !ok {
			// The text is gone, so the passage is kept but cited as unknown.
			p.logger.Warn("indexed chunk missing from store", zap.String("chunk_id", id))
			ids = append(ids, models.UnknownCitation)
			passages = append(passages, "")
			continue
		}
		ids = append(ids, id)
		passages = append(passages, c.Text)
	}

	scored := p.reranker.Rerank(query, passages, topN)
	evidence := make([]models.Evidence, len(scored))
	for i, s := range scored {
		cid := models.UnknownCitation
		if s.Index >= 0 && s.Index < len(ids) {
			cid = ids[s.Index]
		}
		evidence[i] = models.Evidence{CitationID: cid, Text: s.Text}
	}

	ans := p.generator.Generate(ctx, query, evidence)
	lines := make([]string, len(evidence))
	for i, e := range evidence {
		lines[i] = e.String()
	}
	elapsed := time.Since(started)
	if p.recorder != nil {
		p.recorder.AnswerServed(ans.Provider, ans.Degraded, elapsed)
	}
	p.logger.Debug("answer served",
		zap.Int("candidates", len(passages)),
		zap.Int("evidence", len(evidence)),
		zap.String("provider", ans.Provider),
		zap.Bool("degraded", ans.Degraded),
		zap.Duration("elapsed", elapsed))

	return &models.AnswerResult{
		Query:     query,
		Evidence:  lines,
		Answer:    ans.Text,
		Provider:  ans.Provider,
		Degraded:  ans.Degraded,
		QueryTime: elapsed.Milliseconds(),
	}, nil
}

// retrieve returns up to topK candidate chunk ids, fusing keyword hits when enabled.
func (p *Pipeline) retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	qvec, err := embedding.EmbedOne(ctx, p.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	semantic, err := p.index.Search(ctx, qvec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if p.keyword == nil {
		ids := make([]string, len(semantic))
		for i, r := range semantic {
			ids[i] = r.ID
		}
		return ids, nil
	}

	keywordHits, err := p.keyword.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	fused := Fuse(semantic, keywordHits, p.opts.KeywordWeight, p.opts.SemanticWeight)
	if len(fused) > topK {
		fused = fused[:topK]
	}
	ids := make([]string, len(fused))
	for i, r := range fused {
		ids[i] = r.ChunkID
	}
	return ids, nil
}

// Reset clears the store and every index.
func (p *Pipeline) Reset(ctx context.Context) error {
	p.index.Reset()
	if err := p.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset chunk store: %w", err)
	}
	if p.keyword != nil {
		if err := p.keyword.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset keyword index: %w", err)
		}
	}
	p.logger.Info("index reset")
	return nil
}

// Restore re-embeds every stored chunk into the vector index, in insertion order.
// It is used at startup when the chunk store is persistent. Returns the number of chunks restored.
func (p *Pipeline) Restore(ctx context.Context) (int, error) {
	chunks, err := p.store.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load chunks: %w", err)
	}
	for start := 0; start < len(chunks); start += restoreBatchSize {
		end := start + restoreBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return start, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vecs) != len(batch) {
			return start, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
		}
		for i, c := range batch {
			if err := p.index.Upsert(ctx, c.ID, vecs[i]); err != nil {
				return start + i, fmt.Errorf("failed to index vector %s: %w", c.ID, err)
			}
		}
		if p.keyword != nil {
			if err := p.keyword.IndexChunks(ctx, batch); err != nil {
				return start, fmt.Errorf("failed to index keywords: %w", err)
			}
		}
	}
	if len(chunks) > 0 {
		p.logger.Info("restored chunks from store", zap.Int("chunks", len(chunks)))
	}
	return len(chunks), nil
}

// Stats reports document, chunk and vector counts.
func (p *Pipeline) Stats(ctx context.Context) (*models.IndexStats, error) {
	docs, err := p.store.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := p.store.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.IndexStats{
		Documents: int(docs),
		Chunks:    int(chunks),
		Vectors:   p.index.Size(),
	}
	if p.keyword != nil {
		n, err := p.keyword.DocCount()
		if err != nil {
			return nil, err
		}
		stats.KeywordEntries = int(n)
	}
	return stats, nil
}

// Provider returns the answer generator's provider name.
func (p *Pipeline) Provider() string {
	return p.generator.Name()
}
