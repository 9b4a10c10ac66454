// Package vector provides vector indexes and nearest-neighbor search.
package vector

import (
	"context"
	"fmt"
)

// Metric names the distance function of an index.
type Metric string

const (
	// MetricCosine is 1 - cosine similarity, in [0, 2].
	MetricCosine Metric = "cosine"
	// MetricL2 is the Euclidean distance.
	MetricL2 Metric = "l2"
)

// ParseMetric validates a metric name. Empty means cosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", MetricCosine:
		return MetricCosine, nil
	case MetricL2:
		return MetricL2, nil
	default:
		return "", fmt.Errorf("unknown metric: %s (supported: cosine, l2)", s)
	}
}

// VectorIndex defines vector storage and nearest-neighbor search.
// Upsert replaces the vector of an existing id in place.
type VectorIndex interface {
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Remove(ctx context.Context, ids []string) error
	Reset(ctx context.Context) error
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	Metric() Metric
	Close() error
}

// VectorResult is a single nearest-neighbor hit. Smaller distance is closer.
type VectorResult struct {
	ID       string
	Distance float64
}
