// Package search provides the retrieval engine: query embedding, nearest-neighbor
// lookup, relevance calibration, statistics, and template answers.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/embedding"
	"github.com/hyperjump/kujo/internal/metrics"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/vector"
)

// DefaultK is the number of hits returned when the caller does not choose.
const DefaultK = 5

// Index is the collection an engine queries.
type Index interface {
	Name() string
	Metric() vector.Metric
	Query(ctx context.Context, vec []float32, k int) (*models.QueryResult, error)
}

// Engine retrieves complaints for natural-language queries. It starts
// unconnected; Connect attaches it to a collection and may be called again.
type Engine struct {
	embedder embedding.Embedder
	logger   *zap.Logger

	mu         sync.RWMutex
	index      Index
	calibrator Calibrator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an unconnected engine that embeds queries with embedder.
func NewEngine(embedder embedding.Embedder, opts ...Option) *Engine {
	e := &Engine{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect attaches the engine to a collection, replacing any previous one.
func (e *Engine) Connect(index Index) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = index
	e.calibrator = CalibratorFor(index.Metric())
	e.logger.Info("engine connected", zap.String("collection", index.Name()), zap.String("metric", string(index.Metric())))
}

// Connected reports whether Connect has been called.
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index != nil
}

func (e *Engine) current() (Index, Calibrator) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index, e.calibrator
}

// Retrieve embeds query and returns up to k hits ordered by ascending distance,
// each with a calibrated relevance. Blank queries fail with
// models.ErrInvalidQuery before the index is touched.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) (*models.SearchResult, error) {
	start := time.Now()
	result, err := e.retrieve(ctx, query, k, start)
	status := "ok"
	if err != nil {
		status = errorStatus(err)
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(status).Inc()
	if err == nil {
		metrics.RetrievalDuration.Observe(result.Elapsed.Seconds())
		metrics.RetrievalHits.Observe(float64(len(result.Hits)))
	}
	return result, err
}

func (e *Engine) retrieve(ctx context.Context, query string, k int, start time.Time) (*models.SearchResult, error) {
	query, err := ProcessQuery(query)
	if err != nil {
		return nil, err
	}
	index, calibrator := e.current()
	if index == nil {
		return nil, models.ErrNotConnected
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", models.ErrInvalidQuery, k)
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, models.ErrEmbeddingFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingFailure, err)
	}
	raw, err := index.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	hits := make([]models.Hit, raw.Len())
	for i := range hits {
		rel := calibrator.Relevance(raw.Distances[i])
		hits[i] = models.Hit{
			ID:         raw.IDs[i],
			Document:   raw.Documents[i],
			Metadata:   raw.Metadatas[i],
			Distance:   raw.Distances[i],
			Relevance:  rel,
			Confidence: Confidence(rel),
			Rank:       i + 1,
		}
	}
	elapsed := time.Since(start)
	e.logger.Debug("retrieved",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Duration("elapsed", elapsed),
	)
	return &models.SearchResult{
		Query:      query,
		Collection: index.Name(),
		Hits:       hits,
		Total:      len(hits),
		QueryTime:  elapsed.Milliseconds(),
		Elapsed:    elapsed,
	}, nil
}

// Answer retrieves hits for question and summarizes them with the answer template.
func (e *Engine) Answer(ctx context.Context, question string, k int) (*models.Summary, error) {
	result, err := e.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	return Summarize(result), nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, models.ErrNotConnected):
		return "not_connected"
	case errors.Is(err, models.ErrEmbeddingFailure):
		return "embedding_failure"
	default:
		return "error"
	}
}
