// Package extract reads tabular ingest sources (parquet, csv, xlsx, jsonl) into rows.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EmbeddingColumn holds a precomputed vector when present in a source.
const EmbeddingColumn = "embedding"

// ErrUnsupportedFormat is returned for file extensions without a reader.
var ErrUnsupportedFormat = errors.New("unsupported ingest format")

// Row is one source row. Values holds scalar cells keyed by column name
// (string, int64, float64 or bool); the embedding column is parsed into Embedding.
type Row struct {
	Index     int
	Values    map[string]interface{}
	Embedding []float32
}

// Table is the content of one ingest source.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the source declared column name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Extensions lists the supported source extensions.
var Extensions = []string{".parquet", ".csv", ".xlsx", ".jsonl"}

// Supported reports whether ext (with leading dot) has a reader.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extractor reads tabular sources.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its rows.
// Returns an error if the file cannot be read or the format is unsupported.
func (e *Extractor) Extract(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes parses content based on the given extension.
// ext should include the leading dot (e.g. ".parquet").
func (e *Extractor) ExtractBytes(content []byte, ext string) (*Table, error) {
	switch strings.ToLower(ext) {
	case ".parquet":
		return extractParquet(content)
	case ".csv":
		return extractCSV(content)
	case ".xlsx":
		return extractExcel(content)
	case ".jsonl":
		return extractJSONL(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// newRow builds a row, moving the embedding cell out of the values.
func newRow(index int, values map[string]interface{}) (Row, error) {
	row := Row{Index: index, Values: values}
	raw, ok := values[EmbeddingColumn]
	if !ok {
		return row, nil
	}
	delete(values, EmbeddingColumn)
	emb, err := ParseEmbedding(raw)
	if err != nil {
		return row, fmt.Errorf("row %d: %w", index, err)
	}
	row.Embedding = emb
	return row, nil
}
