package search

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/kujo/internal/models"
)

// ExportFileName returns the conventional file name of an export written at t.
func ExportFileName(t time.Time) string {
	return "complaint_search_" + t.Format("20060102_150405") + ".json"
}

// NewExport builds the export document of a result. stats may be nil.
func NewExport(result *models.SearchResult, stats *models.Stats) *models.Export {
	exp := &models.Export{
		Query:        result.Query,
		SearchTime:   result.Elapsed.Seconds(),
		TotalResults: len(result.Hits),
		Results:      make([]models.ExportResult, len(result.Hits)),
		Statistics:   stats,
	}
	for i, h := range result.Hits {
		md := h.Metadata
		if md == nil {
			md = models.Metadata{}
		}
		exp.Results[i] = models.ExportResult{
			ID:         i + 1,
			DocumentID: h.ID,
			Relevance:  h.Relevance,
			Distance:   h.Distance,
			Document:   h.Document,
			Metadata:   md,
		}
	}
	return exp
}

// WriteExport writes exp as indented JSON.
func WriteExport(w io.Writer, exp *models.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exp); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ParseExport reads an export document.
func ParseExport(r io.Reader) (*models.Export, error) {
	var exp models.Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &exp, nil
}
