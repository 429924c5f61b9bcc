package pipeline

import (
	"errors"
	"fmt"

	"github.com/hyperjump/ragbench/internal/answer"
	"github.com/hyperjump/ragbench/internal/chunking"
	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/embedding"
	"github.com/hyperjump/ragbench/internal/keyword"
	"github.com/hyperjump/ragbench/internal/rerank"
	"github.com/hyperjump/ragbench/internal/storage"
	"github.com/hyperjump/ragbench/internal/vector"
	"go.uber.org/zap"
)

// ErrStorageMismatch is returned when a persistent keyword index would outlive an
// in-memory chunk store.
var ErrStorageMismatch = errors.New("storage mismatch")

// Service is a pipeline built from config together with the resources it owns.
type Service struct {
	*Pipeline
	closers []func() error
}

// Close releases the embedder, indexes and chunk store.
func (s *Service) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FromConfig constructs every component named by cfg. Unknown providers, backends and
// strategies fail here, before any request is served.
func FromConfig(cfg *config.Config, logger *zap.Logger, options ...Option) (*Service, error) {
	svc := &Service{}
	fail := func(err error) (*Service, error) {
		_ = svc.Close()
		return nil, err
	}

	if cfg.Retrieval.KeywordEnabled && cfg.Storage.BleveIndexPath != "" && !persistentStore(cfg.Storage.DatabasePath) {
		return nil, fmt.Errorf("%w: bleve_index_path %q requires a database_path", ErrStorageMismatch, cfg.Storage.BleveIndexPath)
	}

	chunkCfg := chunking.Config{Strategy: cfg.Chunk.Strategy, Size: cfg.Chunk.Size, Overlap: cfg.Chunk.Overlap}
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}
	rr, err := rerank.New(cfg.Rerank.Strategy)
	if err != nil {
		return nil, err
	}
	gen, err := answer.New(cfg.LLM, answer.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	idx, err := vector.New(cfg.Index)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, idx.Close)

	emb, err := embedding.New(cfg.Embedding)
	if err != nil {
		return fail(err)
	}
	svc.closers = append(svc.closers, emb.Close)

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fail(fmt.Errorf("failed to open chunk store: %w", err))
	}
	svc.closers = append(svc.closers, store.Close)

	var kw keyword.ChunkIndex
	if cfg.Retrieval.KeywordEnabled {
		b, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			return fail(fmt.Errorf("failed to open keyword index: %w", err))
		}
		svc.closers = append(svc.closers, b.Close)
		kw = b
	}

	p, err := New(Deps{
		Embedder:  emb,
		Index:     idx,
		Reranker:  rr,
		Generator: gen,
		Store:     store,
		Keyword:   kw,
	}, Options{
		Chunk:          chunkCfg,
		KeywordWeight:  cfg.Retrieval.KeywordWeight,
		SemanticWeight: cfg.Retrieval.SemanticWeight,
	}, append([]Option{WithLogger(logger)}, options...)...)
	if err != nil {
		return fail(err)
	}
	svc.Pipeline = p
	return svc, nil
}

func persistentStore(path string) bool {
	return path != "" && path != ":memory:"
}
