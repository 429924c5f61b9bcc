package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chunks.db")
	if err := os.WriteFile(file, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}
	index := filepath.Join(dir, "index.bleve")
	if err := os.MkdirAll(filepath.Join(index, "store"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(index, "index_meta.json"), []byte("ab"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(index, "store", "root.bolt"), []byte("c"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"no paths", nil, 0},
		{"file", []string{file}, 5},
		{"nested directory", []string{index}, 3},
		{"file and directory", []string{file, index}, 8},
		{"missing path skipped", []string{file, filepath.Join(dir, "missing"), index}, 8},
		{"memory paths skipped", []string{"", ":memory:", file}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes(%v) = %d, want %d", tt.paths, got, tt.want)
			}
		})
	}
}

func TestIndexDiskUsage_countsWALSidecars(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "chunks.db")
	for name, size := range map[string]int{"chunks.db": 4, "chunks.db-wal": 10, "chunks.db-shm": 3, "other.db": 100} {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := IndexDiskUsage(db, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 17 {
		t.Errorf("IndexDiskUsage = %d, want 17", got)
	}

	got, err = IndexDiskUsage(":memory:", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("in-memory usage = %d, want 0", got)
	}
}
