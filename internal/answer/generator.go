// Package answer turns a query and its evidence into a grounded, cited answer.
//
// Three providers exist: a local extractive summarizer that never fails, the OpenAI
// chat API, and a local Ollama server. Cloud and local providers degrade to fixed
// fallback text instead of returning errors.
package answer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/pkg/utils"
	"go.uber.org/zap"
)

// Provider names.
const (
	ProviderExtractive = "extractive"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
)

// Defaults.
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOllamaModel   = "qwen2.5:7b"
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultTimeout       = 60 * time.Second
)

// ErrUnsupportedProvider is returned by New for an unknown provider name.
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// Answer is a generated answer and the tier that produced it.
type Answer struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	// Degraded is set when the configured provider could not be used.
	Degraded bool `json:"degraded"`
}

// Generator produces an answer for query from evidence. It never fails: unmet
// preconditions and transport errors turn into fallback text.
type Generator interface {
	Generate(ctx context.Context, query string, evidence []models.Evidence) Answer
	Name() string
}

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// Option configures a Generator.
type Option func(*options)

// WithLogger sets the logger used for degraded-path warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient overrides the HTTP client used by network providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New returns the generator for cfg.Provider. The provider is checked once here so
// Generate never sees an unknown tag.
func New(cfg config.LLMConfig, opts ...Option) (Generator, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = utils.OrNop(o.logger)
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: timeout}
	}

	switch cfg.Provider {
	case ProviderExtractive, "":
		return NewExtractive(), nil
	case ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       model,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.OpenAIBaseURL,
		}, o.httpClient, o.logger), nil
	case ProviderOllama:
		model := cfg.Model
		if model == "" {
			model = DefaultOllamaModel
		}
		return NewOllama(OllamaConfig{
			BaseURL:     cfg.OllamaBaseURL,
			Model:       model,
			Temperature: cfg.Temperature,
		}, o.httpClient, o.logger), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: extractive, openai, ollama)", ErrUnsupportedProvider, cfg.Provider)
	}
}
