package pipeline

import (
	"sort"

	"github.com/hyperjump/ragbench/internal/keyword"
	"github.com/hyperjump/ragbench/internal/vector"
)

// FusedResult holds a chunk id and its fused keyword/semantic scores.
type FusedResult struct {
	ChunkID       string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes BM25 scores to [0,1] by the maximum.
func NormalizeKeywordScores(results []keyword.Result) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	maxScore := 0.0
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// Fuse merges vector and keyword hits with weights. Ordering is by fused score, ties
// keep first appearance (vector hits first, then keyword-only hits).
func Fuse(semantic []vector.Result, keywordHits []keyword.Result, keywordWeight, semanticWeight float64) []FusedResult {
	keywordScores := NormalizeKeywordScores(keywordHits)
	byID := make(map[string]*FusedResult, len(semantic)+len(keywordHits))
	order := make([]string, 0, len(semantic)+len(keywordHits))

	for _, r := range semantic {
		if _, ok := byID[r.ID]; ok {
			continue
		}
		byID[r.ID] = &FusedResult{ChunkID: r.ID, SemanticScore: r.Score}
		order = append(order, r.ID)
	}
	for _, r := range keywordHits {
		if fr, ok := byID[r.ID]; ok {
			fr.KeywordScore = keywordScores[r.ID]
			continue
		}
		byID[r.ID] = &FusedResult{ChunkID: r.ID, KeywordScore: keywordScores[r.ID]}
		order = append(order, r.ID)
	}

	results := make([]FusedResult, len(order))
	for i, id := range order {
		fr := byID[id]
		fr.Score = keywordWeight*fr.KeywordScore + semanticWeight*fr.SemanticScore
		results[i] = *fr
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}
