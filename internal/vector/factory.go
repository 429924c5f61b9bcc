package vector

import (
	"errors"
	"fmt"

	"github.com/hyperjump/ragbench/internal/config"
)

// Backend names.
const (
	// BackendMemory uses in-memory brute-force search. Good for small corpora.
	BackendMemory = "memory"
)

// ErrUnsupportedBackend is returned for an unknown index backend.
var ErrUnsupportedBackend = errors.New("unsupported vector index backend")

// New creates the index selected by cfg.
func New(cfg config.IndexConfig) (Index, error) {
	scorer, err := ScorerByName(cfg.Scorer)
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryIndex(scorer), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: memory)", ErrUnsupportedBackend, cfg.Backend)
	}
}
