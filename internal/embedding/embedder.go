// Package embedding maps text to fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/ragbench/internal/config"
)

// Supported providers.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

var (
	// ErrUnsupportedProvider is returned by New for an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	// ErrMissingAPIKey is returned when a cloud provider is configured without a credential.
	ErrMissingAPIKey = errors.New("embedding provider requires an API key")
)

// Embedder produces vector embeddings for text. Output order matches input order and
// every vector has Dimensions() components.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
	Close() error
}

// New creates the embedder selected by cfg.Provider.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case ProviderHash, "":
		return NewHashEmbedder(cfg.Dimensions), nil
	case ProviderOpenAI:
		e, err := NewOpenAIEmbedder(cfg.APIKey, cfg.Model,
			WithBaseURL(cfg.BaseURL),
			WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProviderONNX:
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: hash, openai, onnx)", ErrUnsupportedProvider, cfg.Provider)
	}
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder %s returned %d vectors for 1 text", e.Name(), len(vecs))
	}
	return vecs[0], nil
}
