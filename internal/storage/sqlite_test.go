package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ragbench/internal/models"
)

func stores(t *testing.T) map[string]ChunkStore {
	t.Helper()
	file, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "chunks.db"))
	if err != nil {
		t.Fatal(err)
	}
	mem, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = file.Close()
		_ = mem.Close()
	})
	return map[string]ChunkStore{
		"memory":        NewMemoryStore(),
		"sqlite-file":   file,
		"sqlite-memory": mem,
	}
}

func chunk(doc string, i int, text string) models.Chunk {
	return models.Chunk{ID: models.ChunkID(doc, i), DocumentID: doc, Index: i, Text: text}
}

func TestChunkStore_PutGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.PutChunks(ctx, []models.Chunk{chunk("doc-1", 0, "a"), chunk("doc-1", 1, "b")}); err != nil {
				t.Fatal(err)
			}
			got, err := store.GetChunk(ctx, "doc-1:1")
			if err != nil {
				t.Fatal(err)
			}
			if got.Text != "b" || got.DocumentID != "doc-1" || got.Index != 1 {
				t.Errorf("got %+v", got)
			}
			if _, err := store.GetChunk(ctx, "doc-1:9"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			m, err := store.GetChunks(ctx, []string{"doc-1:0", "missing"})
			if err != nil {
				t.Fatal(err)
			}
			if len(m) != 1 || m["doc-1:0"].Text != "a" {
				t.Errorf("GetChunks = %v", m)
			}
		})
	}
}

func TestChunkStore_UpsertKeepsPosition(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = store.PutChunks(ctx, []models.Chunk{chunk("a", 0, "x"), chunk("b", 0, "y")})
			_ = store.PutChunks(ctx, []models.Chunk{chunk("a", 0, "x2")})
			all, err := store.AllChunks(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 || all[0].ID != "a:0" || all[0].Text != "x2" || all[1].ID != "b:0" {
				t.Errorf("AllChunks = %+v", all)
			}
			n, _ := store.CountChunks(ctx)
			if n != 2 {
				t.Errorf("CountChunks = %d", n)
			}
		})
	}
}

func TestChunkStore_NextIndexAndDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			next, err := store.NextIndex(ctx, "doc")
			if err != nil || next != 0 {
				t.Fatalf("NextIndex empty = %d, %v", next, err)
			}
			_ = store.PutChunks(ctx, []models.Chunk{chunk("doc", 0, "a"), chunk("doc", 1, "b"), chunk("other", 5, "c")})
			next, _ = store.NextIndex(ctx, "doc")
			if next != 2 {
				t.Errorf("NextIndex = %d, want 2", next)
			}
			docs, _ := store.CountDocuments(ctx)
			if docs != 2 {
				t.Errorf("CountDocuments = %d", docs)
			}

			ids, err := store.DeleteDocument(ctx, "doc")
			if err != nil {
				t.Fatal(err)
			}
			if len(ids) != 2 || ids[0] != "doc:0" || ids[1] != "doc:1" {
				t.Errorf("deleted ids = %v", ids)
			}
			byDoc, _ := store.ChunksByDocument(ctx, "doc")
			if len(byDoc) != 0 {
				t.Errorf("chunks remain: %v", byDoc)
			}
			next, _ = store.NextIndex(ctx, "doc")
			if next != 0 {
				t.Errorf("NextIndex after delete = %d", next)
			}

			if err := store.Reset(ctx); err != nil {
				t.Fatal(err)
			}
			n, _ := store.CountChunks(ctx)
			if n != 0 {
				t.Errorf("CountChunks after reset = %d", n)
			}
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")
	ctx := context.Background()
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.PutChunks(ctx, []models.Chunk{chunk("doc-1", 0, "RAG 的核心是检索质量与证据约束。")})
	_ = store.Close()

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.GetChunk(ctx, "doc-1:0")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "RAG 的核心是检索质量与证据约束。" {
		t.Errorf("got %q", got.Text)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("empty path should open a memory store, got %T", s)
	}
	s, err = Open(filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("path should open a sqlite store, got %T", s)
	}
}
