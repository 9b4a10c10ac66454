package search

import (
	"testing"
	"time"

	"github.com/hyperjump/kujo/internal/models"
)

func TestComputeStatistics_Empty(t *testing.T) {
	s := ComputeStatistics(&models.SearchResult{})
	if s.Count != 0 || s.AvgRelevance != 100 || s.DistinctProducts != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestComputeStatistics(t *testing.T) {
	res := &models.SearchResult{
		Elapsed: 1500 * time.Millisecond,
		Hits: []models.Hit{
			{Relevance: 90, Metadata: models.Metadata{models.FieldProduct: "Mortgage", models.FieldState: "CA"}},
			{Relevance: 60, Metadata: models.Metadata{models.FieldProduct: "Mortgage", models.FieldState: "NY"}},
			{Relevance: 30, Metadata: models.Metadata{models.FieldProduct: "Credit card"}},
			{Relevance: 0, Metadata: models.Metadata{models.FieldProduct: ""}},
		},
	}
	s := ComputeStatistics(res)
	if s.Count != 4 {
		t.Errorf("count = %d", s.Count)
	}
	if s.AvgRelevance != 45 {
		t.Errorf("avg = %v", s.AvgRelevance)
	}
	if s.DistinctProducts != 2 {
		t.Errorf("distinct products = %d", s.DistinctProducts)
	}
	if s.Facets[models.FieldState] != 2 || s.Facets[models.FieldCompany] != 0 {
		t.Errorf("facets = %v", s.Facets)
	}
	if s.ElapsedSeconds != 1.5 {
		t.Errorf("elapsed seconds = %v", s.ElapsedSeconds)
	}
}
