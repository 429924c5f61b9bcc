package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedScorer is returned for an unknown scorer name.
var ErrUnsupportedScorer = errors.New("unsupported vector scorer")

// Scorer names.
const (
	ScorerCosine    = "cosine"
	ScorerDot       = "dot"
	ScorerInsertion = "insertion"
)

// Scorer rates a stored vector against a query. Higher is better.
type Scorer func(query, vec []float32) float64

// ScorerByName returns the scorer registered under name.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case ScorerCosine, "":
		return CosineSimilarity, nil
	case ScorerDot:
		return InnerProduct, nil
	case ScorerInsertion:
		// Every entry scores equally so results come back in insertion order.
		return func(_, _ []float32) float64 { return 0 }, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: cosine, dot, insertion)", ErrUnsupportedScorer, name)
	}
}

// InnerProduct returns the inner product over the shared prefix of a and b.
func InnerProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when either is zero.
func CosineSimilarity(a, b []float32) float64 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return InnerProduct(a, b) / (na * nb)
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
