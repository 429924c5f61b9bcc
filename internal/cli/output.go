package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/ragbench/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteAnswer writes an answer and its evidence to w in the given format.
func WriteAnswer(w io.Writer, result *models.AnswerResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	label := result.Provider
	if result.Degraded {
		label += ", degraded"
	}
	fmt.Fprintf(w, "\nAnswer (%s, %dms)\n", label, result.QueryTime)
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintln(w, result.Answer)
	fmt.Fprintln(w)
	if len(result.Evidence) == 0 {
		fmt.Fprintln(w, "No evidence retrieved.")
		return nil
	}
	fmt.Fprintln(w, "Evidence")
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	for i, ev := range result.Evidence {
		fmt.Fprintf(w, "[%d] %s\n", i+1, ev)
	}
	return nil
}

// WriteIngestResults writes per-document ingest outcomes.
func WriteIngestResults(w io.Writer, results []models.IngestResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, results)
	}
	for _, r := range results {
		name := r.Filename
		if name == "" {
			name = r.DocumentID
		}
		if r.Error != "" {
			fmt.Fprintf(w, "FAIL  %s: %s\n", name, r.Error)
			continue
		}
		fmt.Fprintf(w, "OK    %s -> doc_id=%s (%d chunks)\n", name, r.DocumentID, r.Chunks)
	}
	return nil
}

// WriteStatus writes index statistics.
func WriteStatus(w io.Writer, status *StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "documents:        %d   # documents with at least one chunk\n", status.Documents)
	fmt.Fprintf(w, "chunks:           %d   # stored text chunks\n", status.Chunks)
	fmt.Fprintf(w, "vectors:          %d   # entries in the vector index\n", status.Vectors)
	if status.KeywordEntries > 0 {
		fmt.Fprintf(w, "keyword_entries:  %d   # entries in the keyword index\n", status.KeywordEntries)
	}
	if status.DiskUsageBytes > 0 {
		fmt.Fprintf(w, "disk_usage_bytes: %d   # chunk database + keyword index on disk\n", status.DiskUsageBytes)
	}
	if status.Provider != "" {
		fmt.Fprintf(w, "provider:         %s\n", status.Provider)
	}
	return nil
}

// WriteParsed writes a parsed document: its normalized text, or the whole record as JSON.
func WriteParsed(w io.Writer, doc *models.ParsedDocument, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, doc)
	}
	fmt.Fprintf(w, "# doc_id=%s source_type=%s\n", doc.DocumentID, doc.SourceType)
	fmt.Fprintln(w, doc.Content)
	return nil
}
