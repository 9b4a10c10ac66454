package models

import "time"

// Confidence bands assigned from relevance.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// QueryResult is the raw nearest-neighbor answer of a collection: parallel
// slices of equal length ordered by ascending distance.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []Metadata
	Distances []float64
}

// Len returns the number of hits.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.IDs)
}

// Hit is a single ranked search hit.
type Hit struct {
	ID         string   `json:"id"`
	Document   string   `json:"document"`
	Metadata   Metadata `json:"metadata"`
	Distance   float64  `json:"distance"`
	Relevance  float64  `json:"relevance"`
	Confidence string   `json:"confidence"`
	Rank       int      `json:"rank"`
}

// SearchResult is the response for a retrieval request.
type SearchResult struct {
	Query      string        `json:"query"`
	Collection string        `json:"collection,omitempty"`
	Hits       []Hit         `json:"hits"`
	Total      int           `json:"total"`
	QueryTime  int64         `json:"query_time_ms"`
	Elapsed    time.Duration `json:"-"`
	Stats      *Stats        `json:"stats,omitempty"`
}

// Stats aggregates a search result.
type Stats struct {
	Count            int            `json:"count"`
	Elapsed          time.Duration  `json:"-"`
	ElapsedSeconds   float64        `json:"search_time"`
	AvgRelevance     float64        `json:"avg_relevance"`
	DistinctProducts int            `json:"distinct_products"`
	Facets           map[string]int `json:"facets,omitempty"`
}

// Summary is the template answer over a search result.
type Summary struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	RetrievedCount int    `json:"retrieved_count"`
	Sources        []Hit  `json:"sources"`
}

// Export is the structured export document of a search.
type Export struct {
	Query        string         `json:"query"`
	SearchTime   float64        `json:"search_time"`
	TotalResults int            `json:"total_results"`
	Results      []ExportResult `json:"results"`
	Statistics   *Stats         `json:"statistics,omitempty"`
}

// ExportResult is one exported hit. ID is the 1-based rank.
type ExportResult struct {
	ID         int      `json:"id"`
	DocumentID string   `json:"document_id"`
	Relevance  float64  `json:"relevance"`
	Distance   float64  `json:"distance"`
	Document   string   `json:"document"`
	Metadata   Metadata `json:"metadata"`
}
