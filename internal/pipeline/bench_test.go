package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/ragbench/internal/keyword"
	"github.com/hyperjump/ragbench/internal/vector"
)

func BenchmarkFuse(b *testing.B) {
	sem := make([]vector.Result, 100)
	kw := make([]keyword.Result, 100)
	for i := 0; i < 100; i++ {
		sem[i] = vector.Result{ID: fmt.Sprintf("doc-%d:0", i), Score: float64(100-i) / 100}
		kw[i] = keyword.Result{ID: fmt.Sprintf("doc-%d:0", (i*7)%100), Score: float64(i)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Fuse(sem, kw, 0.5, 0.5)
	}
}

func BenchmarkPipelineAnswer(b *testing.B) {
	p := newTestPipeline(b, testOpts{})
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		content := fmt.Sprintf("Document %d discusses retrieval quality, evidence constraints and topic %d.", i, i%13)
		if _, err := p.Ingest(ctx, fmt.Sprintf("doc-%d", i), content); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Answer(ctx, "which document covers topic 7?", 8, 3); err != nil {
			b.Fatal(err)
		}
	}
}
