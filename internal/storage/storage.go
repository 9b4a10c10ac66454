// Package storage defines the persistence interface for collections, records, and ingest runs.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/kujo/internal/models"
)

// Storage is the durable source of truth behind a collection. Vector indexes
// are derived from it and can always be rebuilt from ListRecords.
type Storage interface {
	// Collection operations
	CreateCollection(ctx context.Context, info *models.CollectionInfo) error
	GetCollection(ctx context.Context, name string) (*models.CollectionInfo, error)
	ListCollections(ctx context.Context) ([]*models.CollectionInfo, error)
	CountCollections(ctx context.Context) (int64, error)
	DeleteCollection(ctx context.Context, name string) error

	// Record operations
	BatchUpsert(ctx context.Context, batch *UpsertBatch) (int64, error)
	GetRecord(ctx context.Context, collection, id string) (*models.Record, error)
	GetRecords(ctx context.Context, collection string, ids []string) (map[string]*models.Record, error)
	ListRecords(ctx context.Context, collection string, fn func(*models.Record) error) error
	CountRecords(ctx context.Context, collection string) (int64, error)

	// Ingest runs
	SaveIngestRun(ctx context.Context, run *IngestRun) error
	ListIngestRuns(ctx context.Context, collection string, limit int) ([]*IngestRun, error)

	Close() error
}

// UpsertBatch is one atomic write of records into a collection.
type UpsertBatch struct {
	Collection string
	Records    []*models.Record
	// Dimension is persisted when the collection has none yet.
	Dimension int
	// Stage runs inside the transaction after every row is written. A non-nil
	// error rolls the transaction back.
	Stage func() error
}

// IngestRun is the persisted outcome of one ingest invocation.
type IngestRun struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Source     string    `json:"source"`
	Records    int       `json:"records"`
	Batches    int       `json:"batches"`
	Committed  int       `json:"committed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
