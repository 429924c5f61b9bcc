package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rebuild joins chunks by dropping the shared overlap prefix of every chunk after the first.
func rebuild(chunks []string, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		r := []rune(c)
		if i > 0 {
			drop := overlap
			if drop > len(r) {
				drop = len(r)
			}
			r = r[drop:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func TestChunk_FixedTiling(t *testing.T) {
	chunks, err := Chunk("RAG 的核心是检索质量", Config{Strategy: StrategyFixed, Size: 6, Overlap: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"RAG 的核", "的核心是检索", "检索质量"}, chunks)
	assert.Equal(t, "RAG 的核心是检索质量", rebuild(chunks, 2))
}

func TestChunk_FixedCoverage(t *testing.T) {
	text := "Retrieval quality and evidence constraints are the heart of RAG. 检索质量与证据约束。"
	for _, tc := range []struct{ size, overlap int }{{5, 0}, {7, 3}, {10, 9}, {1, 0}, {200, 50}} {
		chunks, err := Chunk(text, Config{Strategy: StrategyFixed, Size: tc.size, Overlap: tc.overlap})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		assert.Equal(t, text, rebuild(chunks, tc.overlap), "size=%d overlap=%d", tc.size, tc.overlap)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), tc.size)
		}
	}
}

func TestChunk_WhitespaceOnly(t *testing.T) {
	for _, s := range []string{"", "   ", "\n\t \n"} {
		chunks, err := Chunk(s, Config{Strategy: StrategyRecursive, Size: 10, Overlap: 2})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	cfg := Config{Strategy: StrategyRecursive, Size: 12, Overlap: 3}
	text := "First sentence here. Second one follows!\n\nNew paragraph 第二段。结束"
	a, err := Chunk(text, cfg)
	require.NoError(t, err)
	b, err := Chunk(text, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChunk_RecursiveCutsAtSpace(t *testing.T) {
	chunks, err := Chunk("aaaa bbbb cccc", Config{Strategy: StrategyRecursive, Size: 8, Overlap: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa ", "bbbb ", "cccc"}, chunks)
}

func TestChunk_RecursivePrefersSentenceEnd(t *testing.T) {
	text := "第一句。第二句话。第三"
	chunks, err := Chunk(text, Config{Strategy: StrategyRecursive, Size: 6, Overlap: 1})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "第一句。", chunks[0])
	assert.Equal(t, text, rebuild(chunks, 1))
}

func TestChunk_RecursivePrefersParagraph(t *testing.T) {
	text := "one two\n\nthree four five"
	chunks, err := Chunk(text, Config{Strategy: StrategyRecursive, Size: 12, Overlap: 0})
	require.NoError(t, err)
	assert.Equal(t, "one two\n\n", chunks[0])
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunk_RecursiveWithoutSeparatorsMatchesFixedCoverage(t *testing.T) {
	text := strings.Repeat("x", 25)
	chunks, err := Chunk(text, Config{Strategy: StrategyRecursive, Size: 10, Overlap: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 9)}, chunks)
	assert.Equal(t, text, rebuild(chunks, 2))
}

func TestChunk_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"unknown strategy", Config{Strategy: "semantic", Size: 10, Overlap: 1}, ErrUnsupportedStrategy},
		{"empty strategy", Config{Size: 10}, ErrUnsupportedStrategy},
		{"zero size", Config{Strategy: StrategyFixed, Size: 0}, ErrInvalidConfig},
		{"overlap equals size", Config{Strategy: StrategyFixed, Size: 5, Overlap: 5}, ErrInvalidConfig},
		{"negative overlap", Config{Strategy: StrategyFixed, Size: 5, Overlap: -1}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chunk("some text", tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBatchChunk(t *testing.T) {
	cfg := Config{Strategy: StrategyFixed, Size: 4, Overlap: 0}
	out, err := BatchChunk([]string{"abcdef", "  ", "gh"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "ef", "gh"}, out)

	_, err = BatchChunk([]string{"x"}, Config{Strategy: "nope", Size: 4})
	assert.ErrorIs(t, err, ErrUnsupportedStrategy)
}
