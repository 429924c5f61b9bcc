package models

import (
	"testing"
)

func TestAnswerRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      *AnswerRequest
		wantErr  bool
		wantTopK int
		wantTopN int
	}{
		{"empty query", &AnswerRequest{Query: ""}, true, 0, 0},
		{"whitespace query", &AnswerRequest{Query: " \n\t"}, true, 0, 0},
		{"sets defaults", &AnswerRequest{Query: "x"}, false, DefaultTopK, DefaultTopN},
		{"keeps explicit counts", &AnswerRequest{Query: "x", TopK: 2, TopN: 1}, false, 2, 1},
		{"negative top_k", &AnswerRequest{Query: "x", TopK: -1}, true, 0, 0},
		{"negative top_n", &AnswerRequest{Query: "x", TopN: -3}, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.req.TopK != tt.wantTopK || tt.req.TopN != tt.wantTopN {
				t.Errorf("got top_k=%d top_n=%d, want %d/%d", tt.req.TopK, tt.req.TopN, tt.wantTopK, tt.wantTopN)
			}
		})
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("doc-1", 0); got != "doc-1:0" {
		t.Errorf("ChunkID = %q", got)
	}
	if got := ChunkID("a:b", 12); got != "a:b:12" {
		t.Errorf("ChunkID = %q", got)
	}
}

func TestEvidence_String(t *testing.T) {
	e := Evidence{CitationID: "doc-1:0", Text: "RAG"}
	if e.String() != "[doc-1:0] RAG" {
		t.Errorf("String() = %q", e.String())
	}
}
