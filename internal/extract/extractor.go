// Package extract parses uploaded documents into normalized plain text.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/ragbench/internal/models"
)

// ErrUnsupportedFileType is returned for extensions without a parser.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Source types, reported in models.ParsedDocument.SourceType.
const (
	SourcePDF  = "pdf"
	SourceDOCX = "docx"
	SourcePPTX = "pptx"
	SourceXLSX = "xlsx"
	SourceTXT  = "txt"
	SourceMD   = "md"
)

type parseFunc func([]byte) (string, error)

var parsers = map[string]parseFunc{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".xlsx": extractExcel,
	".txt":  extractPlain,
	".md":   extractPlain,
}

// SupportedExtensions lists the extensions Parse accepts, with the leading dot.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".pptx", ".xlsx", ".txt", ".md"}
}

// IsSupported reports whether filename has an extension Parse accepts.
func IsSupported(filename string) bool {
	_, ok := parsers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Parse extracts text from data according to the extension of filename. The document id
// is the file name without directory or extension.
func Parse(filename string, data []byte) (*models.ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	parse, ok := parsers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFileType, ext,
			strings.Join(SupportedExtensions(), ", "))
	}
	text, err := parse(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(filename)
	return &models.ParsedDocument{
		DocumentID: strings.TrimSuffix(base, filepath.Ext(base)),
		Content:    Sanitize(text),
		SourceType: strings.TrimPrefix(ext, "."),
	}, nil
}

// ParseFile reads the file at path and parses it.
func ParseFile(path string) (*models.ParsedDocument, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(path, data)
}

// Sanitize drops invalid UTF-8, replacement characters and NUL bytes.
func Sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError || r == 0 {
			return -1
		}
		return r
	}, s)
}
