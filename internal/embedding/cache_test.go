package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kujo/internal/models"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d", c.Len())
	}
}

type countingEmbedder struct {
	*HashEmbedder
	calls int
	texts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	c.texts++
	return c.HashEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.texts += len(texts)
	return c.HashEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(16)}
	e := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := e.Embed(ctx, "late fee")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := e.Embed(ctx, "late fee")
	if inner.texts != 1 {
		t.Errorf("inner embedded %d texts, want 1", inner.texts)
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatal("cached vector differs")
		}
	}

	vecs, err := e.EmbedBatch(ctx, []string{"late fee", "overdraft", "mortgage"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || inner.texts != 3 {
		t.Errorf("batch: %d vectors, inner texts %d", len(vecs), inner.texts)
	}
	if e.Dimensions() != 16 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}

	if NewCachedEmbedder(inner, 0) != Embedder(inner) {
		t.Error("zero capacity should return the inner embedder")
	}
}

type shortBatchEmbedder struct{ *HashEmbedder }

func (e shortBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.HashEmbedder.EmbedBatch(ctx, texts)
	if err != nil || len(vecs) == 0 {
		return vecs, err
	}
	return vecs[:len(vecs)-1], nil
}

func TestCachedEmbedder_ShortBatch(t *testing.T) {
	e := NewCachedEmbedder(shortBatchEmbedder{NewHashEmbedder(8)}, 10)
	_, err := e.EmbedBatch(context.Background(), []string{"late fee", "overdraft"})
	if !errors.Is(err, models.ErrEmbeddingFailure) {
		t.Fatalf("expected ErrEmbeddingFailure, got %v", err)
	}
	if c := e.(*CachedEmbedder).cache.Len(); c != 0 {
		t.Errorf("cache holds %d entries after a failed batch", c)
	}
}
