package search

import (
	"fmt"

	"github.com/hyperjump/kujo/internal/models"
)

const (
	// NoResultsAnswer is the answer for an empty result.
	NoResultsAnswer = "No relevant complaints found."
	unknownProduct  = "Unknown"
	generalIssue    = "General"
	maxSources      = 2
)

// Summarize builds the template answer: the most common product and issue
// among the hits, ties going to the one seen first.
func Summarize(result *models.SearchResult) *models.Summary {
	s := &models.Summary{Sources: []models.Hit{}}
	if result != nil {
		s.Question = result.Query
	}
	if result == nil || len(result.Hits) == 0 {
		s.Answer = NoResultsAnswer
		return s
	}

	products := make([]string, len(result.Hits))
	issues := make([]string, len(result.Hits))
	for i, h := range result.Hits {
		products[i] = valueOr(h.Metadata.String(models.FieldProduct), unknownProduct)
		issues[i] = valueOr(h.Metadata.String(models.FieldIssue), generalIssue)
	}
	s.RetrievedCount = len(result.Hits)
	s.Answer = fmt.Sprintf("Based on %d relevant complaints: Most complaints are about %s, primarily regarding %s.",
		len(result.Hits), mostCommon(products), mostCommon(issues))
	n := len(result.Hits)
	if n > maxSources {
		n = maxSources
	}
	s.Sources = append(s.Sources, result.Hits[:n]...)
	return s
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// mostCommon returns the most frequent value; ties go to the earliest first occurrence.
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
