// Package vector provides vector index implementations and a factory for creating them.
package vector

import "fmt"

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses in-memory brute-force search with snapshot files. Exact, insertion-ordered ties.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeChromem uses a persistent chromem-go collection. Cosine only.
	IndexTypeChromem IndexType = "chromem"
)

// Options configures NewVectorIndex.
type Options struct {
	Type       string
	Dimensions int
	Metric     Metric
	// Name and Dir locate the chromem collection; ignored by the memory index.
	Name     string
	Dir      string
	Compress bool
}

// NewVectorIndex creates a vector index of the specified type.
// Supported types: "memory" (default), "chromem".
func NewVectorIndex(opts Options) (VectorIndex, error) {
	switch IndexType(opts.Type) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(opts.Dimensions, opts.Metric)
	case IndexTypeChromem:
		if opts.Metric != "" && opts.Metric != MetricCosine {
			return nil, fmt.Errorf("chromem index supports only the cosine metric, got %s", opts.Metric)
		}
		return NewChromemIndex(opts.Dir, opts.Name, opts.Dimensions, opts.Compress)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, chromem)", opts.Type)
	}
}
