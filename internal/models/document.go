// Package models defines core data structures for documents, chunks, evidence, and answers.
package models

import "fmt"

// Document is a unit of ingestion. It is transient; only its chunks are kept.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Chunk is a contiguous piece of a document's text. Immutable once created.
type Chunk struct {
	ID         string `json:"id" db:"id"`
	DocumentID string `json:"document_id" db:"document_id"`
	Index      int    `json:"index" db:"chunk_index"`
	Text       string `json:"text" db:"text"`
}

// ChunkID returns the stable chunk identifier "{documentID}:{index}".
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}

// ParsedDocument is the normalized output of the document parser.
type ParsedDocument struct {
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}

// DocumentInput is the input for ingesting a document over the API.
type DocumentInput struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	// Replace purges the document's existing chunks before ingesting.
	Replace bool `json:"replace,omitempty"`
}

// IngestResult reports how many chunks a document produced.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	SourceType string `json:"source_type,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
}
