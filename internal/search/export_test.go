package search

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kujo/internal/models"
)

func TestExportFileName(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 4, 5, 0, time.UTC)
	if got := ExportFileName(ts); got != "complaint_search_20240115_090405.json" {
		t.Errorf("ExportFileName = %q", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	res := &models.SearchResult{
		Query:   "late fees",
		Elapsed: 250 * time.Millisecond,
		Hits: []models.Hit{
			{ID: "complaint_8", Document: "overdraft", Distance: 0.2, Relevance: 80,
				Metadata: models.Metadata{models.FieldProduct: "Checking account", models.FieldChunkIndex: 2}},
			{ID: "complaint_2", Document: "fee increase", Distance: 0.4, Relevance: 60},
		},
	}
	stats := ComputeStatistics(res)
	exp := NewExport(res, &stats)

	var buf bytes.Buffer
	if err := WriteExport(&buf, exp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"query\": \"late fees\"") {
		t.Errorf("export not indented with two spaces:\n%s", buf.String())
	}

	got, err := ParseExport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Query != "late fees" || got.TotalResults != 2 || got.SearchTime != 0.25 {
		t.Fatalf("export header = %+v", got)
	}
	if got.Results[0].ID != 1 || got.Results[1].ID != 2 {
		t.Errorf("ids = %d, %d", got.Results[0].ID, got.Results[1].ID)
	}
	if got.Results[0].DocumentID != "complaint_8" {
		t.Errorf("document id = %q", got.Results[0].DocumentID)
	}
	if v, ok := got.Results[0].Metadata[models.FieldChunkIndex].(int64); !ok || v != 2 {
		t.Errorf("chunk_index = %#v", got.Results[0].Metadata[models.FieldChunkIndex])
	}
	if got.Results[1].Metadata == nil {
		t.Error("nil metadata exported")
	}
	if got.Statistics == nil || got.Statistics.Count != 2 {
		t.Errorf("statistics = %+v", got.Statistics)
	}
}

func TestExportWithoutStatistics(t *testing.T) {
	exp := NewExport(&models.SearchResult{Query: "q"}, nil)
	var buf bytes.Buffer
	if err := WriteExport(&buf, exp); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "statistics") {
		t.Error("statistics present without stats")
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("results not an empty array:\n%s", buf.String())
	}
}
