// Package cli provides output helpers for the kujo command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/search"
	"github.com/hyperjump/kujo/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// previewLen is the number of characters of a complaint shown per hit.
const previewLen = 300

// WriteSearchResults writes a search result to w in the given format.
// Statistics are included when result.Stats is set.
func WriteSearchResults(w io.Writer, result *models.SearchResult, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	default:
		writeSearchResultsText(w, result)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "\nFound %d complaints for %q in %dms\n\n", len(result.Hits), result.Query, result.QueryTime)
	for _, hit := range result.Hits {
		writeOneHit(w, hit)
	}
	if result.Stats != nil {
		WriteStatistics(w, result.Stats)
	}
}

func writeOneHit(w io.Writer, hit models.Hit) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d | %.1f%% relevant (%s) | ID: %s\n", hit.Rank, hit.Relevance, hit.Confidence, hit.ID)
	var tags []string
	for _, key := range []string{models.FieldProduct, models.FieldIssue, models.FieldCompany, models.FieldState, models.FieldDate} {
		if v := hit.Metadata.String(key); v != "" {
			tags = append(tags, v)
		}
	}
	if len(tags) > 0 {
		fmt.Fprintf(w, "%s\n", strings.Join(tags, " · "))
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(hit.Document, previewLen))
}

// WriteStatistics writes the aggregate block of a search.
func WriteStatistics(w io.Writer, stats *models.Stats) {
	fmt.Fprintln(w, "--- Statistics ---")
	fmt.Fprintf(w, "Results:           %d\n", stats.Count)
	fmt.Fprintf(w, "Search time:       %.2fs\n", stats.ElapsedSeconds)
	fmt.Fprintf(w, "Avg relevance:     %.0f%%\n", stats.AvgRelevance)
	fmt.Fprintf(w, "Distinct products: %d\n", stats.DistinctProducts)
}

// WriteSummary writes a template answer in the given format.
func WriteSummary(w io.Writer, summary *models.Summary, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, summary)
	}
	fmt.Fprintf(w, "\nQ: %s\n\n%s\n", summary.Question, summary.Answer)
	if len(summary.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, src := range summary.Sources {
			fmt.Fprintf(w, "  [%s] %s\n", src.ID, TruncateWords(src.Document, 20))
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteExportFile writes exp into dir under the timestamped export name and
// returns the file path.
func WriteExportFile(dir string, exp *models.Export, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, search.ExportFileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := search.WriteExport(f, exp); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
