package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

const parquetReadBuffer = 1000

// extractParquet reads every row group through the generic row reader,
// resolving leaf columns to their top-level names. Nested columns other than
// the embedding list are skipped. DATE and TIMESTAMP columns become ISO dates.
func extractParquet(content []byte) (*Table, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	schema := pf.Schema()
	leaves := schema.Columns()
	names := make([]string, len(leaves))
	convs := make([]valueFunc, len(leaves))
	table := &Table{}
	seen := make(map[string]bool)
	for i, path := range leaves {
		if len(path) == 0 {
			continue
		}
		if len(path) > 1 && path[0] != EmbeddingColumn {
			continue
		}
		names[i] = path[0]
		convs[i] = converterFor(schema, path)
		if !seen[path[0]] {
			seen[path[0]] = true
			table.Columns = append(table.Columns, path[0])
		}
	}

	index := 0
	buf := make([]parquet.Row, parquetReadBuffer)
	for _, rg := range pf.RowGroups() {
		rows := parquet.NewRowGroupReader(rg)
		err := readRowGroup(rows, buf, func(r parquet.Row) error {
			row, err := parquetRow(index, r, names, convs)
			if err != nil {
				return err
			}
			table.Rows = append(table.Rows, row)
			index++
			return nil
		})
		if cerr := rows.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close row group: %w", cerr)
		}
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func readRowGroup(rows *parquet.Reader, buf []parquet.Row, fn func(parquet.Row) error) error {
	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			if err := fn(buf[i]); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}

type valueFunc func(parquet.Value) interface{}

// converterFor picks how a leaf column's values become cells.
func converterFor(schema *parquet.Schema, path []string) valueFunc {
	leaf, ok := schema.Lookup(path...)
	if !ok || leaf.Node == nil {
		return parquetValue
	}
	lt := leaf.Node.Type().LogicalType()
	switch {
	case lt == nil:
		return parquetValue
	case lt.Timestamp != nil:
		unit := lt.Timestamp.Unit
		return func(v parquet.Value) interface{} {
			if v.IsNull() {
				return nil
			}
			return formatTimestamp(timestampOf(v.Int64(), unit))
		}
	case lt.Date != nil:
		return func(v parquet.Value) interface{} {
			if v.IsNull() {
				return nil
			}
			return time.Unix(int64(v.Int32())*86400, 0).UTC().Format(time.DateOnly)
		}
	}
	return parquetValue
}

func timestampOf(n int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(n).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

// formatTimestamp drops a midnight time of day, as pandas dates carry one.
func formatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

func parquetRow(index int, row parquet.Row, names []string, convs []valueFunc) (Row, error) {
	values := make(map[string]interface{}, len(names))
	var emb []float32
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(names) || names[col] == "" {
			continue
		}
		name := names[col]
		if name == EmbeddingColumn {
			if !v.IsNull() {
				f, err := toFloat(parquetValue(v))
				if err != nil {
					return Row{}, fmt.Errorf("row %d: embedding: %w", index, err)
				}
				emb = append(emb, float32(f))
			}
			continue
		}
		if val := convs[col](v); val != nil {
			values[name] = val
		}
	}
	return Row{Index: index, Values: values, Embedding: emb}, nil
}

func parquetValue(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return v.String()
	}
}
