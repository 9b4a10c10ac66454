package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/metrics"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/storage"
	"github.com/hyperjump/kujo/internal/vector"
)

// DefaultBatchSize is the number of records committed per sub-batch.
const DefaultBatchSize = 1000

// Collection is a named set of records with one dimensionality and metric.
// Writers are serialized; a query sees only fully committed sub-batches.
type Collection struct {
	name   string
	metric vector.Metric
	store  *Store

	writeMu  sync.Mutex
	commitMu sync.RWMutex

	index      vector.VectorIndex // nil until the first record fixes the dimension
	dimension  int
	generation int64
	createdAt  time.Time
	closed     bool
}

func newCollection(s *Store, info *models.CollectionInfo) *Collection {
	return &Collection{
		name:       info.Name,
		metric:     vector.Metric(info.Metric),
		store:      s,
		dimension:  info.Dimension,
		generation: info.Generation,
		createdAt:  info.CreatedAt,
	}
}

// load opens a persisted collection and brings its vector index up to date
// with the document store.
func (s *Store) load(ctx context.Context, info *models.CollectionInfo) (*Collection, error) {
	c := newCollection(s, info)
	if c.dimension == 0 {
		return c, nil
	}
	idx, err := c.newIndex(c.dimension)
	if err != nil {
		return nil, err
	}
	c.index = idx

	if vector.IndexType(s.backend) == vector.IndexTypeMemory {
		if err := idx.Load(c.snapshotPath(c.generation)); err != nil {
			s.logger.Warn("discarding unreadable index snapshot",
				zap.String("collection", c.name), zap.Error(err))
			_ = idx.Reset(ctx)
		}
	}
	if idx.Size() != info.Count {
		if err := c.rebuild(ctx); err != nil {
			return nil, fmt.Errorf("rebuild index of %s: %w", c.name, err)
		}
	}
	metrics.CollectionRecords.WithLabelValues(c.name).Set(float64(idx.Size()))
	s.logger.Debug("collection loaded",
		zap.String("collection", c.name),
		zap.Int("records", idx.Size()),
		zap.Int64("generation", c.generation),
	)
	return c, nil
}

func (c *Collection) newIndex(dimension int) (vector.VectorIndex, error) {
	return vector.NewVectorIndex(vector.Options{
		Type:       c.store.backend,
		Dimensions: dimension,
		Metric:     c.metric,
		Name:       c.name,
		Dir:        filepath.Join(c.store.chromemDir(), c.name),
		Compress:   c.store.compress,
	})
}

// rebuild refills the index from the document store in insertion order.
func (c *Collection) rebuild(ctx context.Context) error {
	start := time.Now()
	if err := c.index.Reset(ctx); err != nil {
		return err
	}
	ids := make([]string, 0, DefaultBatchSize)
	vecs := make([][]float32, 0, DefaultBatchSize)
	flush := func() error {
		if len(ids) == 0 {
			return nil
		}
		err := c.index.Upsert(ctx, ids, vecs)
		ids, vecs = ids[:0], vecs[:0]
		return err
	}
	err := c.store.storage.ListRecords(ctx, c.name, func(r *models.Record) error {
		ids = append(ids, r.ID)
		vecs = append(vecs, r.Embedding)
		if len(ids) == DefaultBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	c.store.logger.Info("index rebuilt",
		zap.String("collection", c.name),
		zap.Int("records", c.index.Size()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Metric returns the distance metric.
func (c *Collection) Metric() vector.Metric { return c.metric }

// Dimension returns the vector dimensionality, 0 before the first record.
func (c *Collection) Dimension() int {
	c.commitMu.RLock()
	defer c.commitMu.RUnlock()
	return c.dimension
}

// Count returns the number of records.
func (c *Collection) Count() int {
	c.commitMu.RLock()
	defer c.commitMu.RUnlock()
	if c.index == nil {
		return 0
	}
	return c.index.Size()
}

// Info describes the collection.
func (c *Collection) Info() *models.CollectionInfo {
	c.commitMu.RLock()
	defer c.commitMu.RUnlock()
	n := 0
	if c.index != nil {
		n = c.index.Size()
	}
	return &models.CollectionInfo{
		Name:       c.name,
		Metric:     string(c.metric),
		Dimension:  c.dimension,
		Generation: c.generation,
		Count:      n,
		CreatedAt:  c.createdAt,
	}
}

// Progress is reported after each committed sub-batch.
type Progress struct {
	Batch     int // zero-based
	Total     int
	Size      int
	Committed int // records committed so far in this call
}

type addOptions struct {
	batchSize int
	progress  func(Progress)
}

// AddOption configures Add.
type AddOption func(*addOptions)

// WithBatchSize sets the sub-batch size (DefaultBatchSize when <= 0).
func WithBatchSize(n int) AddOption {
	return func(o *addOptions) { o.batchSize = n }
}

// WithProgress registers a callback invoked after every committed sub-batch.
func WithProgress(fn func(Progress)) AddOption {
	return func(o *addOptions) { o.progress = fn }
}

// Add upserts records by id in sub-batches. Each sub-batch is atomic: its
// rows and vectors become visible together or not at all. On failure the
// returned *models.BatchError names the sub-batch; earlier ones stay committed.
// Records without an embedding are embedded with the store's embedder.
func (c *Collection) Add(ctx context.Context, records []*models.Record, opts ...AddOption) error {
	o := addOptions{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.batchSize <= 0 {
		o.batchSize = DefaultBatchSize
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.isClosed() {
		return models.ErrNotConnected
	}
	if len(records) == 0 {
		return nil
	}

	total := (len(records) + o.batchSize - 1) / o.batchSize
	committed := 0
	for b := 0; b < total; b++ {
		if err := ctx.Err(); err != nil {
			return &models.BatchError{Batch: b, Total: total, Err: err}
		}
		end := (b + 1) * o.batchSize
		if end > len(records) {
			end = len(records)
		}
		part := records[b*o.batchSize : end]

		start := time.Now()
		if err := c.commitBatch(ctx, part); err != nil {
			metrics.IngestRecordsTotal.WithLabelValues(c.name, "rejected").Add(float64(len(part)))
			c.store.logger.Warn("sub-batch failed",
				zap.String("collection", c.name),
				zap.Int("batch", b),
				zap.Int("total", total),
				zap.Error(err),
			)
			return &models.BatchError{Batch: b, Total: total, Err: err}
		}
		committed += len(part)
		metrics.IngestBatchDuration.Observe(time.Since(start).Seconds())
		metrics.IngestRecordsTotal.WithLabelValues(c.name, "committed").Add(float64(len(part)))
		c.store.logger.Debug("sub-batch committed",
			zap.String("collection", c.name),
			zap.Int("batch", b),
			zap.Int("total", total),
			zap.Int("size", len(part)),
		)
		if o.progress != nil {
			o.progress(Progress{Batch: b, Total: total, Size: len(part), Committed: committed})
		}
	}
	metrics.CollectionRecords.WithLabelValues(c.name).Set(float64(c.Count()))
	return nil
}

// prepare validates a sub-batch and returns copies carrying embeddings.
func (c *Collection) prepare(ctx context.Context, part []*models.Record) ([]*models.Record, int, error) {
	prepared := make([]*models.Record, len(part))
	var texts []string
	var missing []int
	for i, r := range part {
		if r == nil {
			return nil, 0, fmt.Errorf("%w: nil record at %d", models.ErrSchemaViolation, i)
		}
		if err := r.Validate(); err != nil {
			return nil, 0, err
		}
		cp := *r
		cp.Metadata = r.Metadata.Clone()
		prepared[i] = &cp
		if len(r.Embedding) == 0 {
			texts = append(texts, r.Text)
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		if c.store.embedder == nil {
			return nil, 0, fmt.Errorf("%w: no embedder configured for records without vectors", models.ErrEmbeddingFailure)
		}
		vecs, err := c.store.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if errors.Is(err, models.ErrEmbeddingFailure) {
				return nil, 0, err
			}
			return nil, 0, fmt.Errorf("%w: %v", models.ErrEmbeddingFailure, err)
		}
		if len(vecs) != len(texts) {
			return nil, 0, fmt.Errorf("%w: got %d vectors for %d texts", models.ErrEmbeddingFailure, len(vecs), len(texts))
		}
		for j, i := range missing {
			prepared[i].Embedding = vecs[j]
		}
	}

	dim := c.Dimension()
	if dim == 0 {
		dim = len(prepared[0].Embedding)
		if dim == 0 {
			return nil, 0, fmt.Errorf("%w: record %q has an empty embedding", models.ErrDimensionMismatch, prepared[0].ID)
		}
	}
	for _, r := range prepared {
		if len(r.Embedding) != dim {
			return nil, 0, fmt.Errorf("%w: record %q has %d dimensions, collection has %d",
				models.ErrDimensionMismatch, r.ID, len(r.Embedding), dim)
		}
	}
	return prepared, dim, nil
}

func (c *Collection) commitBatch(ctx context.Context, part []*models.Record) error {
	prepared, dim, err := c.prepare(ctx, part)
	if err != nil {
		return err
	}
	ids := make([]string, len(prepared))
	vecs := make([][]float32, len(prepared))
	for i, r := range prepared {
		ids[i] = r.ID
		vecs[i] = r.Embedding
	}
	// Prior versions restore the index if the transaction fails after staging.
	previous, err := c.store.storage.GetRecords(ctx, c.name, ids)
	if err != nil {
		return err
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	freshIndex := false
	if c.index == nil {
		idx, err := c.newIndex(dim)
		if err != nil {
			return err
		}
		c.index = idx
		freshIndex = true
	}

	staged := false
	generation, err := c.store.storage.BatchUpsert(ctx, &storage.UpsertBatch{
		Collection: c.name,
		Records:    prepared,
		Dimension:  dim,
		Stage: func() error {
			if err := c.index.Upsert(ctx, ids, vecs); err != nil {
				return err
			}
			staged = true
			return nil
		},
	})
	if err != nil {
		if staged {
			c.restore(ctx, ids, previous)
		}
		if freshIndex {
			_ = c.index.Close()
			c.index = nil
		}
		return err
	}
	c.generation = generation
	c.dimension = dim
	return nil
}

// restore undoes a staged index upsert whose transaction did not commit.
func (c *Collection) restore(ctx context.Context, ids []string, previous map[string]*models.Record) {
	var oldIDs, added []string
	var oldVecs [][]float32
	for _, id := range ids {
		if r, ok := previous[id]; ok {
			oldIDs = append(oldIDs, id)
			oldVecs = append(oldVecs, r.Embedding)
		} else {
			added = append(added, id)
		}
	}
	if err := c.index.Remove(ctx, added); err != nil {
		c.store.logger.Error("failed to remove uncommitted vectors", zap.String("collection", c.name), zap.Error(err))
	}
	if len(oldIDs) > 0 {
		if err := c.index.Upsert(ctx, oldIDs, oldVecs); err != nil {
			c.store.logger.Error("failed to restore previous vectors", zap.String("collection", c.name), zap.Error(err))
		}
	}
}

// Query returns the min(k, Count()) records nearest to vec, by ascending distance.
func (c *Collection) Query(ctx context.Context, vec []float32, k int) (*models.QueryResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", models.ErrInvalidQuery, k)
	}
	c.commitMu.RLock()
	defer c.commitMu.RUnlock()
	if c.closed {
		return nil, models.ErrNotConnected
	}
	result := &models.QueryResult{}
	if c.index == nil || c.index.Size() == 0 {
		return result, nil
	}
	if len(vec) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			models.ErrDimensionMismatch, len(vec), c.dimension)
	}
	hits, err := c.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	recs, err := c.store.storage.GetRecords(ctx, c.name, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	for _, h := range hits {
		r, ok := recs[h.ID]
		if !ok {
			c.store.logger.Warn("index hit without record", zap.String("collection", c.name), zap.String("id", h.ID))
			continue
		}
		result.IDs = append(result.IDs, h.ID)
		result.Documents = append(result.Documents, r.Text)
		result.Metadatas = append(result.Metadatas, r.Metadata)
		result.Distances = append(result.Distances, h.Distance)
	}
	return result, nil
}

// Get returns one record by id.
func (c *Collection) Get(ctx context.Context, id string) (*models.Record, error) {
	if c.isClosed() {
		return nil, models.ErrNotConnected
	}
	return c.store.storage.GetRecord(ctx, c.name, id)
}

func (c *Collection) isClosed() bool {
	c.commitMu.RLock()
	defer c.commitMu.RUnlock()
	return c.closed
}

// close snapshots a memory index under the current generation and removes
// older snapshots.
func (c *Collection) close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.index == nil {
		return nil
	}
	var err error
	if vector.IndexType(c.store.backend) == vector.IndexTypeMemory {
		if err = c.index.Save(c.snapshotPath(c.generation)); err == nil {
			c.removeStaleSnapshots()
		}
	}
	if cerr := c.index.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Collection) snapshotPath(generation int64) string {
	return filepath.Join(c.store.indexDir(), fmt.Sprintf("%s-%d.vec", c.name, generation))
}

func (c *Collection) removeStaleSnapshots() {
	entries, err := os.ReadDir(c.store.indexDir())
	if err != nil {
		return
	}
	prefix := c.name + "-"
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		gen, err := strconv.ParseInt(strings.TrimSuffix(rest, ".vec"), 10, 64)
		if err != nil || !strings.HasSuffix(rest, ".vec") || gen == c.generation {
			continue
		}
		_ = os.Remove(filepath.Join(c.store.indexDir(), e.Name()))
	}
}
