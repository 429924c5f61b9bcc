package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ragbench/internal/answer"
	"github.com/hyperjump/ragbench/internal/chunking"
	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/embedding"
	"github.com/hyperjump/ragbench/internal/rerank"
	"github.com/hyperjump/ragbench/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestFromConfig_Defaults(t *testing.T) {
	svc, err := FromConfig(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	_, err = svc.Ingest(ctx, "doc-1", ragDoc)
	require.NoError(t, err)
	res, err := svc.Answer(ctx, ragQuery, 8, 3)
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "[doc-1:0]")
	assert.Equal(t, answer.ProviderExtractive, svc.Provider())
}

func TestFromConfig_PersistentWithKeyword(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Storage.DatabasePath = filepath.Join(dir, "chunks.db")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")
	cfg.Retrieval.KeywordEnabled = true

	svc, err := FromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = svc.Ingest(ctx, "doc-1", ragDoc)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	svc, err = FromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()
	n, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Vectors)
	assert.Equal(t, 1, stats.KeywordEntries)
}

func TestFromConfig_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"chunk strategy", func(c *config.Config) { c.Chunk.Strategy = "semantic" }, chunking.ErrUnsupportedStrategy},
		{"llm provider", func(c *config.Config) { c.LLM.Provider = "anthropic" }, answer.ErrUnsupportedProvider},
		{"embedding provider", func(c *config.Config) { c.Embedding.Provider = "bge" }, embedding.ErrUnsupportedProvider},
		{"index backend", func(c *config.Config) { c.Index.Backend = "faiss" }, vector.ErrUnsupportedBackend},
		{"index scorer", func(c *config.Config) { c.Index.Scorer = "l2" }, vector.ErrUnsupportedScorer},
		{"rerank strategy", func(c *config.Config) { c.Rerank.Strategy = "bge" }, rerank.ErrUnsupportedStrategy},
		{"persistent bleve with memory store", func(c *config.Config) {
			c.Retrieval.KeywordEnabled = true
			c.Storage.BleveIndexPath = filepath.Join(t.TempDir(), "bleve")
		}, ErrStorageMismatch},
		{"persistent bleve with sqlite memory", func(c *config.Config) {
			c.Retrieval.KeywordEnabled = true
			c.Storage.DatabasePath = ":memory:"
			c.Storage.BleveIndexPath = filepath.Join(t.TempDir(), "bleve")
		}, ErrStorageMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := FromConfig(cfg, zap.NewNop())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
