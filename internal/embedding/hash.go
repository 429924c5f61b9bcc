package embedding

import (
	"context"
	"hash/fnv"
	"unicode"

	"github.com/hyperjump/ragbench/pkg/utils"
)

// DefaultHashDimensions is used when no dimension is configured.
const DefaultHashDimensions = 256

// HashEmbedder is a deterministic lexical embedder. It feature-hashes lower-cased
// code point unigrams and bigrams into a fixed number of buckets and L2-normalizes
// the result, so texts sharing characters land near each other under cosine.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a hash embedder producing vectors of the given dimension.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns one vector per text. It never fails unless ctx is done.
func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimensions)
	var prev rune
	hasPrev := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			hasPrev = false
			continue
		}
		r = unicode.ToLower(r)
		vec[e.bucket(string(r))] += 1
		if hasPrev {
			vec[e.bucket(string([]rune{prev, r}))] += 0.5
		}
		prev = r
		hasPrev = true
	}
	utils.NormalizeL2(vec)
	return vec
}

func (e *HashEmbedder) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(e.dimensions))
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Name returns the provider name.
func (e *HashEmbedder) Name() string {
	return ProviderHash
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
