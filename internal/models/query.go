package models

import (
	"fmt"
	"strings"
)

// Default candidate and evidence counts for an answer request.
const (
	DefaultTopK = 8
	DefaultTopN = 3
)

// AnswerRequest is a question against the ingested corpus.
type AnswerRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
	TopN  int    `json:"top_n,omitempty"`
}

// Validate rejects an empty query and fills unset counts with defaults.
// Explicit negative counts are rejected rather than defaulted.
func (r *AnswerRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
	if r.TopN == 0 {
		r.TopN = DefaultTopN
	}
	if r.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d", r.TopK)
	}
	if r.TopN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d", r.TopN)
	}
	return nil
}
