package utils

import (
	"reflect"
	"testing"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"为什么 RAG 会 hallucinate?", []string{"为", "什", "么", "rag", "会", "hallucinate"}},
		{"GPT-4o mini", []string{"gpt", "4o", "mini"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		if got := Terms(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Terms(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTermSet(t *testing.T) {
	set := TermSet("rag RAG Rag 检索 检")
	if len(set) != 3 {
		t.Errorf("expected 3 distinct terms, got %v", set)
	}
}
