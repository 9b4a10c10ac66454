package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/kujo/internal/extract"
	"github.com/hyperjump/kujo/internal/models"
)

// TextColumns are searched in order for the record text.
var TextColumns = []string{"text_chunk", "text", "consumer_complaint_narrative", "narrative"}

// IDColumns are searched in order for a source record id.
var IDColumns = []string{"id", "__index_level_0__"}

var columnAliases = map[string]string{
	"date_received": models.FieldDate,
}

// IDFunc assigns the record id of a row.
type IDFunc func(extract.Row) string

// SourceIDs uses the first id column of the table, matched by normalized
// name so "ID" and "Id" count, falling back to the row index.
func SourceIDs(table *extract.Table) IDFunc {
	col := idColumn(table.Columns)
	return func(r extract.Row) string {
		if col != "" {
			if v, ok := r.Values[col]; ok {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					return s
				}
			}
		}
		return strconv.Itoa(r.Index)
	}
}

// NormalizeColumn lowercases a column name and maps spaces and dashes to
// underscores, so "Date received" and "Sub-issue" become "date_received" and "sub_issue".
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// RowRecords converts table rows into records. The text column is the first
// of TextColumns present; the table must have one. Every other scalar column
// becomes metadata. complaint_id is kept as text; chunk_index and
// total_chunks as integers. At most limit rows are converted when limit > 0.
func RowRecords(table *extract.Table, ids IDFunc, limit int) ([]*models.Record, error) {
	textCol := ""
	cols := make(map[string]bool, len(table.Columns))
	for _, c := range table.Columns {
		cols[NormalizeColumn(c)] = true
	}
	for _, c := range TextColumns {
		if cols[c] {
			textCol = c
			break
		}
	}
	if textCol == "" && len(table.Rows) > 0 {
		return nil, fmt.Errorf("%w: no text column (want one of %s)", models.ErrSchemaViolation, strings.Join(TextColumns, ", "))
	}

	rows := table.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	records := make([]*models.Record, 0, len(rows))
	for _, row := range rows {
		md := models.Metadata{}
		var text string
		for k, v := range row.Values {
			key := NormalizeColumn(k)
			if alias, ok := columnAliases[key]; ok {
				key = alias
			}
			switch {
			case key == textCol:
				text = fmt.Sprint(v)
			case isIDColumn(key):
			default:
				md[key] = normalizeValue(key, v)
			}
		}
		records = append(records, &models.Record{
			ID:        ids(row),
			Text:      text,
			Metadata:  md,
			Embedding: row.Embedding,
		})
	}
	return records, nil
}

// idColumn returns the raw name of the first column that normalizes to one of IDColumns.
func idColumn(columns []string) string {
	for _, want := range IDColumns {
		for _, c := range columns {
			if NormalizeColumn(c) == want {
				return c
			}
		}
	}
	return ""
}

func isIDColumn(key string) bool {
	for _, c := range IDColumns {
		if c == key {
			return true
		}
	}
	return false
}

func normalizeValue(key string, v interface{}) interface{} {
	switch key {
	case models.FieldComplaintID:
		return models.Metadata{key: v}.String(key)
	case models.FieldChunkIndex, models.FieldTotalChunks:
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return n
			}
		}
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f)
		}
	}
	return v
}
