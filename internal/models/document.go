// Package models defines core data structures for complaint records, queries, and search results.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Recognized metadata facets.
const (
	FieldProduct     = "product"
	FieldIssue       = "issue"
	FieldSubIssue    = "sub_issue"
	FieldCompany     = "company"
	FieldState       = "state"
	FieldDate        = "date"
	FieldComplaintID = "complaint_id"
	FieldChunkIndex  = "chunk_index"
	FieldTotalChunks = "total_chunks"
	FieldSource      = "source"
)

// FacetFields are the metadata keys counted in result statistics.
var FacetFields = []string{FieldProduct, FieldIssue, FieldCompany, FieldState}

// Metadata is a flat map of scalar values attached to a record.
type Metadata map[string]interface{}

// Record is the unit of storage and retrieval: one complaint text (or chunk of one).
type Record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CollectionInfo describes a named collection.
type CollectionInfo struct {
	Name       string    `json:"name"`
	Metric     string    `json:"metric"`
	Dimension  int       `json:"dimension"`
	Generation int64     `json:"generation"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the record shape. Dimensionality is checked by the collection.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: record id is empty", ErrSchemaViolation)
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: record %q has empty text", ErrSchemaViolation, r.ID)
	}
	if err := r.Metadata.Validate(); err != nil {
		return fmt.Errorf("record %q: %w", r.ID, err)
	}
	return nil
}

// Validate rejects nested or non-scalar values.
func (m Metadata) Validate() error {
	for k, v := range m {
		if k == "" {
			return fmt.Errorf("%w: empty metadata key", ErrSchemaViolation)
		}
		if !isScalar(v) {
			return fmt.Errorf("%w: metadata %q has non-scalar value of type %T", ErrSchemaViolation, k, v)
		}
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return fmt.Errorf("%w: metadata %q is not a finite number", ErrSchemaViolation, k)
		}
	}
	return nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// String returns the value under key formatted as text, or "" when absent.
// Integral numbers are formatted without a fractional part.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Metadata{key: float64(x)}.String(key)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Clone returns a shallow copy; values are scalars so the copy is independent.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// EncodeMetadata serializes metadata for storage.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeMetadata parses stored metadata. Integral numbers come back as int64,
// other numbers as float64.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if len(data) == 0 {
		return Metadata{}, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if m == nil {
		m = Metadata{}
	}
	return m, nil
}

func (m Metadata) normalizeNumbers() {
	for k, v := range m {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			m[k] = i
			continue
		}
		if f, err := n.Float64(); err == nil {
			m[k] = f
		}
	}
}

// UnmarshalJSON keeps integer metadata as int64 when decoding API payloads.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	out := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return err
	}
	md := Metadata(out)
	md.normalizeNumbers()
	*m = md
	return nil
}
