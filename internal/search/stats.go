package search

import "github.com/hyperjump/kujo/internal/models"

// ComputeStatistics aggregates a search result. An empty result has an
// average relevance of 100 and no distinct products. Missing or empty facet
// values are not counted.
func ComputeStatistics(result *models.SearchResult) models.Stats {
	stats := models.Stats{
		AvgRelevance: 100,
		Facets:       make(map[string]int, len(models.FacetFields)),
	}
	if result == nil {
		return stats
	}
	stats.Count = len(result.Hits)
	stats.Elapsed = result.Elapsed
	stats.ElapsedSeconds = result.Elapsed.Seconds()

	seen := make(map[string]map[string]struct{}, len(models.FacetFields))
	for _, f := range models.FacetFields {
		seen[f] = make(map[string]struct{})
	}
	var sum float64
	for _, h := range result.Hits {
		sum += h.Relevance
		for _, f := range models.FacetFields {
			if v := h.Metadata.String(f); v != "" {
				seen[f][v] = struct{}{}
			}
		}
	}
	if stats.Count > 0 {
		stats.AvgRelevance = sum / float64(stats.Count)
	}
	for f, values := range seen {
		stats.Facets[f] = len(values)
	}
	stats.DistinctProducts = stats.Facets[models.FieldProduct]
	return stats
}
