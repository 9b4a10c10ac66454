package models

import (
	"fmt"
	"strings"
)

// SearchRequest is a retrieval request as accepted by the API and CLI.
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
	// Stats asks for the aggregate statistics block alongside the hits.
	Stats bool `json:"stats,omitempty"`
}

// Validate rejects blank queries and applies the default and maximum k.
// A zero K takes defaultK; a K above maxK is capped when maxK > 0.
func (q *SearchRequest) Validate(defaultK, maxK int) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrInvalidQuery)
	}
	if q.K == 0 {
		q.K = defaultK
	}
	if q.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidQuery, q.K)
	}
	if maxK > 0 && q.K > maxK {
		q.K = maxK
	}
	return nil
}
