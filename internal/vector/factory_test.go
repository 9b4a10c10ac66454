package vector

import (
	"context"
	"testing"
)

func TestNewVectorIndex_Memory(t *testing.T) {
	idx, err := NewVectorIndex(Options{Type: "memory", Dimensions: 3})
	if err != nil {
		t.Fatalf("NewVectorIndex(memory): %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Upsert(ctx, []string{"a"}, [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size=%d, want 1", idx.Size())
	}
	if idx.Metric() != MetricCosine {
		t.Errorf("Metric=%s, want cosine", idx.Metric())
	}
}

func TestNewVectorIndex_Empty(t *testing.T) {
	// Empty type defaults to memory
	idx, err := NewVectorIndex(Options{Dimensions: 3, Metric: MetricL2})
	if err != nil {
		t.Fatalf("NewVectorIndex(''): %v", err)
	}
	defer idx.Close()

	if idx.Size() != 0 {
		t.Errorf("Size=%d, want 0", idx.Size())
	}
	if idx.Metric() != MetricL2 {
		t.Errorf("Metric=%s, want l2", idx.Metric())
	}
}

func TestNewVectorIndex_Unknown(t *testing.T) {
	if _, err := NewVectorIndex(Options{Type: "faiss", Dimensions: 3}); err == nil {
		t.Error("expected error for unknown index type")
	}
}

func TestNewVectorIndex_InvalidDimension(t *testing.T) {
	if _, err := NewVectorIndex(Options{Type: "memory"}); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestNewVectorIndex_ChromemRejectsL2(t *testing.T) {
	if _, err := NewVectorIndex(Options{Type: "chromem", Dimensions: 3, Metric: MetricL2, Name: "c"}); err == nil {
		t.Error("expected error for chromem with l2")
	}
}
