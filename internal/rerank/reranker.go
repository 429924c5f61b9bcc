// Package rerank reorders candidate passages by their relevance to a query.
package rerank

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperjump/ragbench/pkg/utils"
)

// Strategy names.
const (
	StrategyChar  = "char"
	StrategyToken = "token"
)

// ErrUnsupportedStrategy is returned for an unknown rerank strategy.
var ErrUnsupportedStrategy = errors.New("unsupported rerank strategy")

// Scored is a passage with its relevance score. Index is the passage's position in the
// candidate list, so identity survives duplicate texts.
type Scored struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Reranker returns at most topN passages with non-increasing scores. Ties keep the
// candidates' original order. topN <= 0 yields no results.
type Reranker interface {
	Rerank(query string, passages []string, topN int) []Scored
	Name() string
}

// New returns the reranker for strategy. Empty selects the character-overlap baseline.
func New(strategy string) (Reranker, error) {
	switch strategy {
	case StrategyChar, "":
		return &OverlapReranker{name: StrategyChar, features: charSet}, nil
	case StrategyToken:
		return &OverlapReranker{name: StrategyToken, features: utils.TermSet}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: char, token)", ErrUnsupportedStrategy, strategy)
	}
}

// OverlapReranker scores a passage by how many distinct query features it shares.
type OverlapReranker struct {
	name     string
	features func(string) map[string]struct{}
}

// Name returns the strategy name.
func (r *OverlapReranker) Name() string {
	return r.name
}

// Rerank scores every passage and keeps the best topN.
func (r *OverlapReranker) Rerank(query string, passages []string, topN int) []Scored {
	if topN <= 0 || len(passages) == 0 {
		return []Scored{}
	}
	q := r.features(query)
	scored := make([]Scored, len(passages))
	for i, p := range passages {
		scored[i] = Scored{Index: i, Text: p, Score: float64(overlap(q, r.features(p)))}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// charSet returns the distinct code points of s, including spaces and punctuation.
func charSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range s {
		set[string(r)] = struct{}{}
	}
	return set
}
