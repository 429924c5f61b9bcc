package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/ragbench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

func TestHashEmbedder_ShapeAndDeterminism(t *testing.T) {
	e := NewHashEmbedder(64)
	ctx := context.Background()
	texts := []string{"RAG 的核心是检索质量与证据约束。", "", "hello"}
	a, err := e.Embed(ctx, texts)
	require.NoError(t, err)
	require.Len(t, a, len(texts))
	for _, v := range a {
		assert.Len(t, v, 64)
	}
	b, err := e.Embed(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var norm float64
	for _, x := range a[0] {
		norm += float64(x * x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	for _, x := range a[1] {
		assert.Zero(t, x, "empty text embeds to the zero vector")
	}
}

func TestHashEmbedder_EmptyInput(t *testing.T) {
	out, err := NewHashEmbedder(8).Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHashEmbedder_LexicalSimilarity(t *testing.T) {
	e := NewHashEmbedder(256)
	vecs, err := e.Embed(context.Background(), []string{
		"为什么 RAG 会 hallucinate?",
		"RAG 的核心是检索质量与证据约束。",
		"今天天气很好",
	})
	require.NoError(t, err)
	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

func TestHashEmbedder_CaseAndWhitespaceInsensitive(t *testing.T) {
	e := NewHashEmbedder(32)
	vecs, err := e.Embed(context.Background(), []string{"Hello World", "hello  world"})
	require.NoError(t, err)
	assert.Equal(t, vecs[0], vecs[1])
}

func TestHashEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashEmbedder(8).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: "hash", Dimensions: 16})
	require.NoError(t, err)
	assert.Equal(t, 16, e.Dimensions())
	assert.Equal(t, ProviderHash, e.Name())

	_, err = New(config.EmbeddingConfig{Provider: "bge"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)

	e, err = New(config.EmbeddingConfig{Provider: "openai"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.True(t, e == nil, "failed constructor must return a nil interface")

	e, err = New(config.EmbeddingConfig{Provider: "onnx"})
	assert.Error(t, err)
	assert.True(t, e == nil, "failed constructor must return a nil interface")
}

func TestEmbedOne(t *testing.T) {
	v, err := EmbedOne(context.Background(), NewHashEmbedder(8), "abc")
	require.NoError(t, err)
	assert.Len(t, v, 8)
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		// Return in reverse order to check that Index drives placement.
		for i := range req.Input {
			vec := make([]float32, 1536)
			vec[0] = float32(i + 1)
			data[len(req.Input)-1-i] = item{Object: "embedding", Embedding: vec, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder("sk-test", "", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimensions())

	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(2), vecs[1][0])
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestOpenAIEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder("sk-test", "text-embedding-3-small", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestNewOpenAIEmbedder_UnknownModel(t *testing.T) {
	_, err := NewOpenAIEmbedder("sk-test", "my-model")
	assert.Error(t, err)
}
