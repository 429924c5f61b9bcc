package vector

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkMemoryIndexSearch(b *testing.B) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		vec := make([]float32, 256)
		vec[0] = float32(i) / 1000
		vec[i%256] += 1
		if err := idx.Upsert(ctx, fmt.Sprintf("doc-%d:0", i), vec); err != nil {
			b.Fatal(err)
		}
	}
	query := make([]float32, 256)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 8)
	}
}
