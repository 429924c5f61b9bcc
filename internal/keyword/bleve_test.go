package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ragbench/internal/models"
)

func newTestIndex(t *testing.T, path string) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsText(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()
	chunks := []models.Chunk{
		{ID: "report:0", DocumentID: "report", Index: 0, Text: "This report mentions Omnisyan and other findings."},
		{ID: "report:1", DocumentID: "report", Index: 1, Text: "The Bayes app is also referenced."},
	}
	if err := idx.IndexChunks(ctx, chunks); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}

	results, err := idx.Search(ctx, "Omnisyan", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "report:0" {
		t.Fatalf("Search(Omnisyan) = %v", results)
	}

	// Standard analyzer (no stemming) so "bayes" matches "Bayes".
	results, err = idx.Search(ctx, "bayes", 10)
	if err != nil {
		t.Fatalf("Search bayes: %v", err)
	}
	if len(results) != 1 || results[0].ID != "report:1" {
		t.Fatalf("Search(bayes) = %v", results)
	}
}

func TestBleveIndex_SearchCJK(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()
	_ = idx.IndexChunks(ctx, []models.Chunk{
		{ID: "doc-1:0", DocumentID: "doc-1", Text: "RAG 的核心是检索质量与证据约束。"},
		{ID: "doc-2:0", DocumentID: "doc-2", Text: "today the weather is fine"},
	})
	results, err := idx.Search(ctx, "为什么 RAG 会 hallucinate?", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].ID != "doc-1:0" {
		t.Fatalf("expected doc-1:0 first, got %v", results)
	}
}

func TestBleveIndex_DeleteAndReset(t *testing.T) {
	idx := newTestIndex(t, "")
	ctx := context.Background()
	_ = idx.IndexChunks(ctx, []models.Chunk{
		{ID: "a:0", DocumentID: "a", Text: "alpha"},
		{ID: "a:1", DocumentID: "a", Text: "alpha beta"},
		{ID: "b:0", DocumentID: "b", Text: "beta"},
	})
	if n, _ := idx.DocCount(); n != 3 {
		t.Fatalf("DocCount = %d", n)
	}
	if err := idx.Delete(ctx, []string{"a:0", "a:1"}); err != nil {
		t.Fatal(err)
	}
	results, _ := idx.Search(ctx, "alpha", 10)
	if len(results) != 0 {
		t.Errorf("deleted chunks still found: %v", results)
	}
	if err := idx.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.DocCount(); n != 0 {
		t.Errorf("DocCount after reset = %d", n)
	}
}

func TestBleveIndex_ReopensOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	ctx := context.Background()
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = idx.IndexChunks(ctx, []models.Chunk{{ID: "x:0", DocumentID: "x", Text: "persistent keyword"}})
	_ = idx.Close()

	idx = newTestIndex(t, path)
	results, err := idx.Search(ctx, "persistent", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "x:0" {
		t.Errorf("reopened index results = %v", results)
	}
}

func TestBleveIndex_ZeroLimit(t *testing.T) {
	idx := newTestIndex(t, "")
	results, err := idx.Search(context.Background(), "anything", 0)
	if err != nil || len(results) != 0 {
		t.Errorf("Search limit 0 = %v, %v", results, err)
	}
}
