package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseEmbedding converts an embedding cell into a vector. It accepts numeric
// lists and their text forms: JSON arrays ("[0.1, 0.2]") and numpy reprs
// ("[0.1 0.2]"). Empty cells yield nil.
func ParseEmbedding(v interface{}) ([]float32, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []float32:
		return x, nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, nil
	case []interface{}:
		out := make([]float32, len(x))
		for i, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return nil, fmt.Errorf("embedding element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	case string:
		return parseEmbeddingText(x)
	default:
		return nil, fmt.Errorf("embedding cell of type %T", v)
	}
}

func parseEmbeddingText(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var nums []float64
	if err := json.Unmarshal([]byte(s), &nums); err == nil {
		return ParseEmbedding(nums)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	out := make([]float32, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("embedding element %d: %w", i, err)
		}
		out[i] = float32(n)
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
