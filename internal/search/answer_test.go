package search

import (
	"testing"

	"github.com/hyperjump/kujo/internal/models"
)

func hit(id, product, issue string) models.Hit {
	md := models.Metadata{}
	if product != "" {
		md[models.FieldProduct] = product
	}
	if issue != "" {
		md[models.FieldIssue] = issue
	}
	return models.Hit{ID: id, Metadata: md}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		hits    []models.Hit
		answer  string
		sources int
	}{
		{
			name:   "empty",
			answer: NoResultsAnswer,
		},
		{
			name: "majority",
			hits: []models.Hit{
				hit("1", "Mortgage", "Fees"),
				hit("2", "Credit card", "Billing"),
				hit("3", "Credit card", "Billing"),
			},
			answer:  "Based on 3 relevant complaints: Most complaints are about Credit card, primarily regarding Billing.",
			sources: 2,
		},
		{
			name: "tie goes to first seen",
			hits: []models.Hit{
				hit("1", "Mortgage", "Fees"),
				hit("2", "Credit card", "Billing"),
			},
			answer:  "Based on 2 relevant complaints: Most complaints are about Mortgage, primarily regarding Fees.",
			sources: 2,
		},
		{
			name:    "missing metadata",
			hits:    []models.Hit{hit("1", "", "")},
			answer:  "Based on 1 relevant complaints: Most complaints are about Unknown, primarily regarding General.",
			sources: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(&models.SearchResult{Query: "q", Hits: tt.hits})
			if s.Answer != tt.answer {
				t.Errorf("answer = %q, want %q", s.Answer, tt.answer)
			}
			if len(s.Sources) != tt.sources {
				t.Errorf("sources = %d, want %d", len(s.Sources), tt.sources)
			}
			if s.RetrievedCount != len(tt.hits) {
				t.Errorf("retrieved = %d", s.RetrievedCount)
			}
			if s.Question != "q" {
				t.Errorf("question = %q", s.Question)
			}
		})
	}
}
