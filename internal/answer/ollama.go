package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/pkg/utils"
	"go.uber.org/zap"
)

// OllamaConfig configures the local Ollama generator.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
}

// Ollama answers through a local Ollama server's /api/chat endpoint.
type Ollama struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
	logger      *zap.Logger
}

// ollamaChatRequest is the Ollama /api/chat request format.
type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Stream   bool                `json:"stream"`
	Messages []ollamaChatMessage `json:"messages"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaOptions always carries temperature, including 0.
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaChatResponse is the Ollama /api/chat response format.
type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

// NewOllama creates an Ollama generator.
func NewOllama(cfg OllamaConfig, httpClient *http.Client, logger *zap.Logger) *Ollama {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Ollama{
		client:      httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      utils.OrNop(logger),
	}
}

// Name returns the provider name.
func (g *Ollama) Name() string {
	return ProviderOllama
}

// Generate sends one non-streaming chat request. Any transport or decode failure
// yields the unreachable message.
func (g *Ollama) Generate(ctx context.Context, query string, evidence []models.Evidence) Answer {
	if len(evidence) == 0 {
		return Answer{Text: NoEvidenceMessage, Provider: ProviderOllama}
	}
	content, err := g.chat(ctx, query, evidence)
	if err != nil {
		g.logger.Warn("ollama request failed",
			zap.String("base_url", g.baseURL), zap.String("model", g.model), zap.Error(err))
		return Answer{Text: UnreachableMessage(g.baseURL), Provider: ProviderOllama, Degraded: true}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		content = EmptyResponseMessage
	}
	return Answer{Text: content, Provider: ProviderOllama}
}

func (g *Ollama) chat(ctx context.Context, query string, evidence []models.Evidence) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:  g.model,
		Stream: false,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(query, evidence)},
		},
		Options: ollamaOptions{Temperature: g.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return chatResp.Message.Content, nil
}
