package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func TestMemoryIndex_UpsertSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3, MetricCosine)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	ids := []string{"a", "b", "c"}
	if err := idx.Upsert(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[0].Distance > 1e-9 {
		t.Errorf("top result should be a at distance 0, got %s at %v", results[0].ID, results[0].Distance)
	}
	if results[1].Distance < results[0].Distance {
		t.Error("distances must be non-decreasing")
	}

	// k larger than size returns everything.
	results, _ = idx.Search(ctx, []float32{0, 0, 1}, 10)
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestMemoryIndex_UpsertReplacesInPlace(t *testing.T) {
	idx, _ := NewMemoryIndex(2, MetricCosine)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {1, 0}})

	// Ties resolve in insertion order.
	res, _ := idx.Search(ctx, []float32{1, 0}, 2)
	if res[0].ID != "a" || res[1].ID != "b" {
		t.Fatalf("tie order = %s, %s", res[0].ID, res[1].ID)
	}

	_ = idx.Upsert(ctx, []string{"a"}, [][]float32{{1, 0}})
	if idx.Size() != 2 {
		t.Errorf("Size after re-upsert = %d, want 2", idx.Size())
	}
	res, _ = idx.Search(ctx, []float32{1, 0}, 2)
	if res[0].ID != "a" {
		t.Errorf("re-upserted id lost its position: %s", res[0].ID)
	}

	_ = idx.Upsert(ctx, []string{"a"}, [][]float32{{0, 1}})
	res, _ = idx.Search(ctx, []float32{1, 0}, 1)
	if res[0].ID != "b" {
		t.Errorf("expected b after a moved away, got %s", res[0].ID)
	}
}

func TestMemoryIndex_RejectsDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(2, MetricCosine)
	ctx := context.Background()
	err := idx.Upsert(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {1, 0, 0}})
	if err == nil {
		t.Fatal("expected dimension error")
	}
	if idx.Size() != 0 {
		t.Errorf("partial upsert applied: size %d", idx.Size())
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); err == nil {
		t.Error("expected query dimension error")
	}
}

func TestMemoryIndex_L2(t *testing.T) {
	idx, _ := NewMemoryIndex(2, MetricL2)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []string{"near", "far"}, [][]float32{{1, 1}, {4, 5}})
	res, _ := idx.Search(ctx, []float32{1, 1}, 2)
	if res[0].ID != "near" || res[1].ID != "far" {
		t.Fatalf("order = %s, %s", res[0].ID, res[1].ID)
	}
	if math.Abs(res[1].Distance-5) > 1e-9 {
		t.Errorf("far distance = %v, want 5", res[1].Distance)
	}
}

func TestMemoryIndex_RemoveReset(t *testing.T) {
	idx, _ := NewMemoryIndex(2, MetricCosine)
	ctx := context.Background()
	_ = idx.Upsert(ctx, []string{"a", "b", "c"}, [][]float32{{1, 0}, {1, 0}, {1, 0}})
	if err := idx.Remove(ctx, []string{"b"}); err != nil {
		t.Fatal(err)
	}
	res, _ := idx.Search(ctx, []float32{1, 0}, 3)
	if len(res) != 2 || res[0].ID != "a" || res[1].ID != "c" {
		t.Errorf("after remove: %v", res)
	}
	// Positions stay consistent after remove.
	_ = idx.Upsert(ctx, []string{"c"}, [][]float32{{0, 1}})
	if idx.Size() != 2 {
		t.Errorf("Size=%d", idx.Size())
	}
	_ = idx.Reset(ctx)
	if idx.Size() != 0 {
		t.Errorf("Size after reset=%d", idx.Size())
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "complaints-1.vec")
	ctx := context.Background()
	idx, _ := NewMemoryIndex(2, MetricCosine)
	_ = idx.Upsert(ctx, []string{"first", "second"}, [][]float32{{0.6, 0.8}, {1, 0}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(2, MetricCosine)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("Size=%d", loaded.Size())
	}
	res, _ := loaded.Search(ctx, []float32{0.6, 0.8}, 1)
	if res[0].ID != "first" {
		t.Errorf("top = %s", res[0].ID)
	}

	wrongDim, _ := NewMemoryIndex(3, MetricCosine)
	if err := wrongDim.Load(path); err == nil {
		t.Error("expected dimension mismatch on load")
	}
	// Missing file leaves the index unchanged.
	if err := loaded.Load(filepath.Join(t.TempDir(), "missing.vec")); err != nil || loaded.Size() != 2 {
		t.Errorf("missing load: size %d err %v", loaded.Size(), err)
	}
}
