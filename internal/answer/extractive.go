package answer

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/pkg/utils"
)

const (
	maxExtractiveItems = 2
	maxPassageRunes    = 160
)

// Extractive builds an answer from the evidence text alone. It never touches the network.
type Extractive struct{}

// NewExtractive returns the local extractive generator.
func NewExtractive() *Extractive {
	return &Extractive{}
}

// Name returns the provider name.
func (g *Extractive) Name() string {
	return ProviderExtractive
}

// Generate picks the best one or two evidence items by query-term overlap.
func (g *Extractive) Generate(_ context.Context, query string, evidence []models.Evidence) Answer {
	return Answer{Text: extractiveAnswer(query, evidence, false), Provider: ProviderExtractive}
}

func extractiveAnswer(query string, evidence []models.Evidence, degraded bool) string {
	if len(evidence) == 0 {
		return NoEvidenceMessage
	}

	var b strings.Builder
	if degraded {
		b.WriteString(DegradedMarker)
		b.WriteString("\n")
	}
	b.WriteString(extractiveLead(query))
	b.WriteString("\n")
	for _, e := range selectEvidence(query, evidence) {
		b.WriteString("- [")
		b.WriteString(e.CitationID)
		b.WriteString("] ")
		b.WriteString(utils.Truncate(utils.CollapseWhitespace(e.Text), maxPassageRunes))
		b.WriteString("\n")
	}
	b.WriteString(extractiveConclusion)
	return b.String()
}

type rankedEvidence struct {
	evidence models.Evidence
	overlap  int
	score    float64
}

// selectEvidence scores each item by overlap*10 + density, where overlap counts distinct
// query terms present in the passage and density is overlap over the passage's term count.
// The first pick is always kept; a second only when it shares at least one query term.
func selectEvidence(query string, evidence []models.Evidence) []models.Evidence {
	queryTerms := utils.TermSet(query)
	ranked := make([]rankedEvidence, len(evidence))
	for i, e := range evidence {
		terms := utils.Terms(e.Text)
		seen := make(map[string]struct{})
		for _, t := range terms {
			if _, ok := queryTerms[t]; ok {
				seen[t] = struct{}{}
			}
		}
		overlap := len(seen)
		density := 0.0
		if len(terms) > 0 {
			density = float64(overlap) / float64(len(terms))
		}
		ranked[i] = rankedEvidence{evidence: e, overlap: overlap, score: float64(overlap)*10 + density}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := []models.Evidence{ranked[0].evidence}
	for _, r := range ranked[1:] {
		if len(picked) >= maxExtractiveItems {
			break
		}
		if r.overlap > 0 {
			picked = append(picked, r.evidence)
		}
	}
	return picked
}
