package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuarded_ConcurrentIngestAndAnswer(t *testing.T) {
	g := NewGuarded(newTestPipeline(t, testOpts{}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := g.Ingest(ctx, fmt.Sprintf("doc-%d", i), ragDoc)
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := g.Answer(ctx, ragQuery, 8, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats, err := g.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Documents)
	assert.Equal(t, 8, stats.Vectors)

	_, err = g.Replace(ctx, "doc-0", "replaced")
	require.NoError(t, err)
	require.NoError(t, g.Delete(ctx, "doc-1"))
	stats, _ = g.Stats(ctx)
	assert.Equal(t, 7, stats.Documents)

	require.NoError(t, g.Reset(ctx))
	stats, _ = g.Stats(ctx)
	assert.Zero(t, stats.Chunks)
	assert.Equal(t, "extractive", g.Provider())
}
