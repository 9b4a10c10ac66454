package extract

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const maxJSONLLine = 16 * 1024 * 1024

// extractJSONL reads one JSON object per line. Blank lines are skipped and do
// not advance the row index. Integral numbers become int64.
func extractJSONL(content []byte) (*Table, error) {
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), maxJSONLLine)
	table := &Table{}
	seen := make(map[string]bool)
	index := 0
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		obj := map[string]interface{}{}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values := make(map[string]interface{}, len(obj))
		var keys []string
		for k, v := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
			if k == EmbeddingColumn {
				values[k] = v
				continue
			}
			if s := jsonScalar(v); s != nil {
				values[k] = s
			}
		}
		sort.Strings(keys)
		table.Columns = append(table.Columns, keys...)
		row, err := newRow(index, values)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
		index++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan jsonl: %w", err)
	}
	return table, nil
}

// jsonScalar keeps strings, numbers and booleans; nested values and nulls are dropped.
func jsonScalar(v interface{}) interface{} {
	switch x := v.(type) {
	case string, bool:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return nil
	}
}
