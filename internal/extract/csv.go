package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV reads a header row followed by records. Cells stay strings;
// empty cells are omitted.
func extractCSV(content []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return fromStringRows(header, func() ([]string, error) {
		rec, err := r.Read()
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
}

// fromStringRows builds a table from a header and a row iterator that
// returns io.EOF when exhausted.
func fromStringRows(header []string, next func() ([]string, error)) (*Table, error) {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	table := &Table{Columns: cols}
	for index := 0; ; index++ {
		rec, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", index, err)
		}
		values := make(map[string]interface{}, len(cols))
		for i, cell := range rec {
			if i >= len(cols) || cols[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			values[cols[i]] = cell
		}
		row, err := newRow(index, values)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
