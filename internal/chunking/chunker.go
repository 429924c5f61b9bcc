// Package chunking splits document text into overlapping, character-based chunks.
package chunking

import (
	"errors"
	"fmt"
	"strings"
)

// Supported strategies.
const (
	StrategyFixed     = "fixed"
	StrategyRecursive = "recursive"
)

// ErrUnsupportedStrategy is returned for an unknown chunking strategy.
var ErrUnsupportedStrategy = errors.New("unsupported chunk strategy")

// ErrInvalidConfig is returned when size or overlap are out of range.
var ErrInvalidConfig = errors.New("invalid chunk config")

// Config controls chunking. Size and Overlap count Unicode code points.
type Config struct {
	Strategy string
	Size     int
	Overlap  int
}

// Validate checks the strategy name and that 0 <= Overlap < Size.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyFixed, StrategyRecursive:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStrategy, c.Strategy)
	}
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfig, c.Size, c.Overlap)
	}
	return nil
}

// Chunk splits text according to cfg. Whitespace-only text yields no chunks.
// Consecutive chunks share cfg.Overlap characters and together cover every character.
func Chunk(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	runes := []rune(text)
	if cfg.Strategy == StrategyRecursive {
		return recursive(runes, cfg.Size, cfg.Overlap), nil
	}
	return fixed(runes, cfg.Size, cfg.Overlap), nil
}

// BatchChunk chunks every text and concatenates the results in order.
func BatchChunk(texts []string, cfg Config) ([]string, error) {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		chunks, err := Chunk(t, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func fixed(runes []rune, size, overlap int) []string {
	step := size - overlap
	if step < 1 {
		step = 1
	}
	chunks := make([]string, 0, len(runes)/step+1)
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// separators in priority order. Each group is tried before the next.
var separators = [][]string{
	{"\n\n"},
	{"\n"},
	{"。", "！", "？", ".", "!", "?"},
	{" "},
}

func recursive(runes []rune, size, overlap int) []string {
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := end
		if c, ok := lastSeparatorCut(runes[start:end], size/2); ok {
			cut = start + c
		}
		chunks = append(chunks, string(runes[start:cut]))
		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// lastSeparatorCut returns the offset just past the last separator in window whose end
// lies strictly after minEnd, trying separator groups in priority order.
func lastSeparatorCut(window []rune, minEnd int) (int, bool) {
	for _, group := range separators {
		best := -1
		for _, sep := range group {
			sr := []rune(sep)
			for i := len(window) - len(sr); i >= 0; i-- {
				cut := i + len(sr)
				if cut <= minEnd || cut <= best {
					break
				}
				if runesEqual(window[i:cut], sr) {
					best = cut
					break
				}
			}
		}
		if best > 0 {
			return best, true
		}
	}
	return 0, false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
