package answer

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures the OpenAI chat generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	// BaseURL targets an OpenAI-compatible endpoint. Empty uses api.openai.com.
	BaseURL string
}

// OpenAI answers through the OpenAI chat completions API. Without an API key it
// answers extractively with the degraded marker.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewOpenAI creates an OpenAI generator. An empty API key is allowed and selects the
// degraded extractive path.
func NewOpenAI(cfg OpenAIConfig, httpClient *http.Client, logger *zap.Logger) *OpenAI {
	g := &OpenAI{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      utils.OrNop(logger),
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return g
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	g.client = openai.NewClientWithConfig(cc)
	return g
}

// Name returns the provider name.
func (g *OpenAI) Name() string {
	return ProviderOpenAI
}

// Generate asks the chat model to answer from evidence only.
func (g *OpenAI) Generate(ctx context.Context, query string, evidence []models.Evidence) Answer {
	if len(evidence) == 0 {
		return Answer{Text: NoEvidenceMessage, Provider: ProviderOpenAI}
	}
	if g.client == nil {
		g.logger.Warn("openai api key not set, answering extractively")
		return Answer{Text: extractiveAnswer(query, evidence, true), Provider: ProviderOpenAI, Degraded: true}
	}

	// go-openai drops a zero temperature from the request, which the API reads as 1.
	temperature := float32(g.temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(query, evidence)},
		},
	})
	if err != nil {
		g.logger.Warn("openai chat completion failed, answering extractively",
			zap.String("model", g.model), zap.Error(err))
		return Answer{Text: extractiveAnswer(query, evidence, true), Provider: ProviderOpenAI, Degraded: true}
	}
	if len(resp.Choices) == 0 {
		return Answer{Text: EmptyResponseMessage, Provider: ProviderOpenAI}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		content = EmptyResponseMessage
	}
	return Answer{Text: content, Provider: ProviderOpenAI}
}
