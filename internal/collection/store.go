// Package collection implements the similarity index store: named collections
// of complaint records backed by SQLite and searched through a vector index.
package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/embedding"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/storage"
	"github.com/hyperjump/kujo/internal/vector"
)

// DatabaseFile is the SQLite file name inside the store directory.
const DatabaseFile = "kujo.db"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Store owns the persisted collections of one data directory.
type Store struct {
	dir      string
	storage  storage.Storage
	embedder embedding.Embedder
	backend  string
	compress bool
	logger   *zap.Logger

	mu     sync.Mutex
	open   map[string]*Collection
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBackend selects the vector index type ("memory" or "chromem").
func WithBackend(backend string) Option {
	return func(s *Store) { s.backend = backend }
}

// WithCompress enables gzip compression of chromem files.
func WithCompress(compress bool) Option {
	return func(s *Store) { s.compress = compress }
}

// OpenStore opens or creates the store rooted at dir. The embedder computes
// vectors for records ingested without one. Fails with
// models.ErrStorageUnavailable when dir or the database cannot be opened.
func OpenStore(dir string, embedder embedding.Embedder, opts ...Option) (*Store, error) {
	s := &Store{
		dir:      dir,
		embedder: embedder,
		backend:  string(vector.IndexTypeMemory),
		logger:   zap.NewNop(),
		open:     make(map[string]*Collection),
	}
	for _, opt := range opts {
		opt(s)
	}
	switch vector.IndexType(s.backend) {
	case vector.IndexTypeMemory, vector.IndexTypeChromem:
	default:
		return nil, fmt.Errorf("unknown index backend: %s (supported: memory, chromem)", s.backend)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	st, err := storage.NewSQLiteStorage(filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	s.storage = st
	s.logger.Debug("store opened", zap.String("dir", dir), zap.String("backend", s.backend))
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Storage returns the underlying document store.
func (s *Store) Storage() storage.Storage { return s.storage }

// Embedder returns the embedder used for records without vectors.
func (s *Store) Embedder() embedding.Embedder { return s.embedder }

// List returns every collection with its record count.
func (s *Store) List(ctx context.Context) ([]*models.CollectionInfo, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.storage.ListCollections(ctx)
}

// Lookup reports whether the named collection exists and opens it if so.
func (s *Store) Lookup(ctx context.Context, name string) (*Collection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, models.ErrNotConnected
	}
	if c, ok := s.open[name]; ok {
		return c, true, nil
	}
	info, err := s.storage.GetCollection(ctx, name)
	if errors.Is(err, models.ErrCollectionNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	c, err := s.load(ctx, info)
	if err != nil {
		return nil, false, err
	}
	s.open[name] = c
	return c, true, nil
}

// Get opens an existing collection. Fails with models.ErrCollectionNotFound.
func (s *Store) Get(ctx context.Context, name string) (*Collection, error) {
	c, found, err := s.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", models.ErrCollectionNotFound, name)
	}
	return c, nil
}

// Create creates an empty collection. Fails with models.ErrCollectionExists.
func (s *Store) Create(ctx context.Context, name, metric string) (*Collection, error) {
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("invalid collection name %q: use letters, digits, '-' or '_'", name)
	}
	m, err := vector.ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	if vector.IndexType(s.backend) == vector.IndexTypeChromem && m != vector.MetricCosine {
		return nil, fmt.Errorf("chromem backend supports only the cosine metric, got %s", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, models.ErrNotConnected
	}
	info := &models.CollectionInfo{Name: name, Metric: string(m)}
	if err := s.storage.CreateCollection(ctx, info); err != nil {
		return nil, err
	}
	c := newCollection(s, info)
	s.open[name] = c
	s.logger.Info("collection created", zap.String("collection", name), zap.String("metric", string(m)))
	return c, nil
}

// OpenOrCreate opens the named collection, creating it when absent. A store
// that had no collection at all is bootstrapped with the sample complaints.
// created reports whether the collection was made by this call.
func (s *Store) OpenOrCreate(ctx context.Context, name, metric string) (c *Collection, created bool, err error) {
	c, found, err := s.Lookup(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if found {
		return c, false, nil
	}
	existing, err := s.storage.CountCollections(ctx)
	if err != nil {
		return nil, false, err
	}
	c, err = s.Create(ctx, name, metric)
	if errors.Is(err, models.ErrCollectionExists) {
		c, err = s.Get(ctx, name)
		return c, false, err
	}
	if err != nil {
		return nil, false, err
	}
	if existing == 0 {
		if err := c.Add(ctx, SampleComplaints()); err != nil {
			// Leave the store empty so the next open seeds it.
			if derr := s.discard(context.WithoutCancel(ctx), c); derr != nil {
				s.logger.Error("failed to discard unseeded collection", zap.String("collection", name), zap.Error(derr))
			}
			return nil, false, fmt.Errorf("seed sample complaints: %w", err)
		}
		s.logger.Info("seeded sample complaints", zap.String("collection", name), zap.Int("count", c.Count()))
	}
	return c, true, nil
}

// discard closes c without a snapshot and deletes it with its records.
func (s *Store) discard(ctx context.Context, c *Collection) error {
	c.writeMu.Lock()
	c.commitMu.Lock()
	c.closed = true
	if c.index != nil {
		_ = c.index.Close()
		c.index = nil
	}
	c.commitMu.Unlock()
	c.writeMu.Unlock()

	s.mu.Lock()
	delete(s.open, c.name)
	s.mu.Unlock()
	if err := s.storage.DeleteCollection(ctx, c.name); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.chromemDir(), c.name))
}

// Close closes every open collection, snapshotting memory indexes, then the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for name, c := range s.open {
		if err := c.close(); err != nil {
			errs = append(errs, fmt.Errorf("close collection %s: %w", name, err))
		}
	}
	s.open = map[string]*Collection{}
	if err := s.storage.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.ErrNotConnected
	}
	return nil
}

func (s *Store) indexDir() string   { return filepath.Join(s.dir, "index") }
func (s *Store) chromemDir() string { return filepath.Join(s.dir, "chromem") }
