package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/ragbench/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAnswer_Text(t *testing.T) {
	result := &models.AnswerResult{
		Query:    "what is rag?",
		Evidence: []string{"[doc-1:0] RAG combines retrieval and generation.", "[doc-2:0] Other."},
		Answer:   "RAG combines retrieval and generation. [doc-1:0]",
		Provider: "openai",
		Degraded: true,
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, result, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Answer (openai, degraded") {
		t.Errorf("missing header with provider: %s", out)
	}
	if !strings.Contains(out, result.Answer) {
		t.Errorf("missing answer text: %s", out)
	}
	if !strings.Contains(out, "[1] [doc-1:0] RAG combines") || !strings.Contains(out, "[2] [doc-2:0] Other.") {
		t.Errorf("evidence not numbered in order: %s", out)
	}
}

func TestWriteAnswer_TextNoEvidence(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAnswer(&buf, &models.AnswerResult{Answer: "nothing", Provider: "extractive"}, OutputText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No evidence retrieved.") {
		t.Errorf("expected no-evidence line: %s", buf.String())
	}
	if strings.Contains(buf.String(), "degraded") {
		t.Errorf("non-degraded answer labelled degraded: %s", buf.String())
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	result := &models.AnswerResult{
		Query:    "q",
		Evidence: []string{"[a:0] <b>"},
		Answer:   "a & b",
		Provider: "extractive",
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, result, OutputJSON); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<b>") || !strings.Contains(out, "a & b") {
		t.Errorf("html characters should be written as-is: %s", out)
	}
	if strings.Contains(out, `\u003c`) || strings.Contains(out, `\u0026`) {
		t.Errorf("html should not be escaped: %s", out)
	}
	var decoded models.AnswerResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Answer != result.Answer || len(decoded.Evidence) != 1 || decoded.Evidence[0] != "[a:0] <b>" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestWriteIngestResults_Text(t *testing.T) {
	results := []models.IngestResult{
		{Filename: "a.md", DocumentID: "a", Chunks: 2},
		{Filename: "b.odp", Error: "unsupported file type"},
		{DocumentID: "inline"},
	}
	var buf bytes.Buffer
	if err := WriteIngestResults(&buf, results, OutputText); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "OK    a.md -> doc_id=a (2 chunks)") {
		t.Errorf("line 0: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "FAIL  b.odp: unsupported file type") {
		t.Errorf("line 1: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "OK    inline") {
		t.Errorf("line 2: %q", lines[2])
	}
}

func TestWriteStatus_TextOmitsZeroOptionalFields(t *testing.T) {
	status := &StatusResponse{
		IndexStats: models.IndexStats{Documents: 1, Chunks: 3, Vectors: 3},
		Provider:   "extractive",
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"documents:        1", "chunks:           3", "vectors:          3", "provider:         extractive"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
	if strings.Contains(out, "keyword_entries") || strings.Contains(out, "disk_usage_bytes") {
		t.Errorf("zero optional fields should be omitted: %s", out)
	}
}

func TestWriteParsed(t *testing.T) {
	doc := &models.ParsedDocument{DocumentID: "notes", Content: "hello\nworld", SourceType: "md"}
	var buf bytes.Buffer
	if err := WriteParsed(&buf, doc, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "# doc_id=notes source_type=md\nhello\nworld\n" {
		t.Errorf("unexpected text output: %q", buf.String())
	}
	buf.Reset()
	if err := WriteParsed(&buf, doc, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"source_type": "md"`) {
		t.Errorf("unexpected json output: %s", buf.String())
	}
}
