package vector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemIndex stores vectors in a chromem-go collection persisted under a directory.
// chromem ranks by cosine similarity only.
type ChromemIndex struct {
	dimensions int
	name       string
	db         *chromem.DB
	coll       *chromem.Collection
	mu         sync.RWMutex
}

// errNoEmbedding is returned if chromem ever asks us to embed text; every
// document and query arrives with a precomputed vector.
var errNoEmbedding = errors.New("chromem index requires precomputed embeddings")

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

// NewChromemIndex opens or creates the named chromem collection under dir.
// An empty dir keeps the collection in memory only.
func NewChromemIndex(dir, name string, dimensions int, compress bool) (*ChromemIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	var db *chromem.DB
	if dir == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(dir, compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}
	coll, err := db.GetOrCreateCollection(name, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("get or create chromem collection %s: %w", name, err)
	}
	return &ChromemIndex{dimensions: dimensions, name: name, db: db, coll: coll}, nil
}

// Type returns the index type identifier.
func (c *ChromemIndex) Type() string {
	return string(IndexTypeChromem)
}

// Upsert writes documents keyed by id; chromem overwrites existing ids.
func (c *ChromemIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	docs := make([]chromem.Document, len(ids))
	for i, id := range ids {
		if len(vectors[i]) != c.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), c.dimensions)
		}
		vec := make([]float32, c.dimensions)
		copy(vec, vectors[i])
		docs[i] = chromem.Document{ID: id, Embedding: vec}
	}
	if len(docs) == 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add chromem documents: %w", err)
	}
	return nil
}

// Search returns the k nearest documents, ordered by distance then id.
func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if len(query) != c.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), c.dimensions)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := c.coll.Count()
	if k <= 0 || n == 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	q := make([]float32, len(query))
	copy(q, query)
	res, err := c.coll.QueryEmbedding(ctx, q, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query chromem collection: %w", err)
	}
	out := make([]*VectorResult, len(res))
	for i, r := range res {
		out[i] = &VectorResult{ID: r.ID, Distance: 1 - float64(r.Similarity)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Remove deletes documents by id.
func (c *ChromemIndex) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.coll.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("delete chromem documents: %w", err)
	}
	return nil
}

// Reset drops and recreates the collection.
func (c *ChromemIndex) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.db.DeleteCollection(c.name); err != nil {
		return fmt.Errorf("delete chromem collection: %w", err)
	}
	coll, err := c.db.CreateCollection(c.name, nil, noEmbedding)
	if err != nil {
		return fmt.Errorf("recreate chromem collection: %w", err)
	}
	c.coll = coll
	return nil
}

// Save is a no-op; chromem persists on every write.
func (c *ChromemIndex) Save(string) error { return nil }

// Load is a no-op; the collection is read when the index is opened.
func (c *ChromemIndex) Load(string) error { return nil }

// Size returns the number of documents in the collection.
func (c *ChromemIndex) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coll.Count()
}

// Dimensions returns the vector dimensionality.
func (c *ChromemIndex) Dimensions() int { return c.dimensions }

// Metric returns MetricCosine.
func (c *ChromemIndex) Metric() Metric { return MetricCosine }

// Close is a no-op for ChromemIndex.
func (c *ChromemIndex) Close() error { return nil }
