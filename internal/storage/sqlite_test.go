package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kujo/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_Collections(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateCollection(ctx, &models.CollectionInfo{Name: "complaints", Metric: "cosine"}); err != nil {
		t.Fatal(err)
	}
	err := store.CreateCollection(ctx, &models.CollectionInfo{Name: "complaints", Metric: "cosine"})
	if !errors.Is(err, models.ErrCollectionExists) {
		t.Fatalf("expected ErrCollectionExists, got %v", err)
	}
	if _, err := store.GetCollection(ctx, "missing"); !errors.Is(err, models.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	info, err := store.GetCollection(ctx, "complaints")
	if err != nil {
		t.Fatal(err)
	}
	if info.Metric != "cosine" || info.Dimension != 0 || info.Count != 0 {
		t.Errorf("got %+v", info)
	}
	n, err := store.CountCollections(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountCollections = %d, %v", n, err)
	}
	list, err := store.ListCollections(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("ListCollections = %d, %v", len(list), err)
	}
	if err := store.DeleteCollection(ctx, "complaints"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteCollection(ctx, "complaints"); !errors.Is(err, models.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestSQLiteStorage_BatchUpsert(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	if err := store.CreateCollection(ctx, &models.CollectionInfo{Name: "c", Metric: "cosine"}); err != nil {
		t.Fatal(err)
	}

	gen, err := store.BatchUpsert(ctx, &UpsertBatch{
		Collection: "c",
		Dimension:  2,
		Records: []*models.Record{
			{ID: "a", Text: "first", Metadata: models.Metadata{"product": "Mortgage", "chunk_index": 0}, Embedding: []float32{1, 0}},
			{ID: "b", Text: "second", Embedding: []float32{0, 1}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}

	// Overwrite a keeps its original position.
	gen, err = store.BatchUpsert(ctx, &UpsertBatch{
		Collection: "c",
		Dimension:  2,
		Records:    []*models.Record{{ID: "a", Text: "first, revised", Embedding: []float32{0.6, 0.8}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gen != 2 {
		t.Errorf("generation = %d, want 2", gen)
	}

	count, err := store.CountRecords(ctx, "c")
	if err != nil || count != 2 {
		t.Fatalf("CountRecords = %d, %v", count, err)
	}
	rec, err := store.GetRecord(ctx, "c", "a")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Text != "first, revised" || rec.Embedding[1] != 0.8 {
		t.Errorf("got %+v", rec)
	}
	if len(rec.Metadata) != 0 {
		t.Errorf("metadata should be replaced, got %v", rec.Metadata)
	}

	var order []string
	if err := store.ListRecords(ctx, "c", func(r *models.Record) error {
		order = append(order, r.ID)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("insertion order = %v", order)
	}

	info, _ := store.GetCollection(ctx, "c")
	if info.Dimension != 2 || info.Generation != 2 || info.Count != 2 {
		t.Errorf("collection info = %+v", info)
	}

	_, err = store.BatchUpsert(ctx, &UpsertBatch{
		Collection: "c",
		Dimension:  3,
		Records:    []*models.Record{{ID: "z", Text: "z", Embedding: []float32{1, 0, 0}}},
	})
	if !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSQLiteStorage_BatchUpsertStageRollsBack(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	_ = store.CreateCollection(ctx, &models.CollectionInfo{Name: "c", Metric: "cosine"})

	stageErr := errors.New("index rejected batch")
	_, err := store.BatchUpsert(ctx, &UpsertBatch{
		Collection: "c",
		Dimension:  2,
		Records:    []*models.Record{{ID: "a", Text: "x", Embedding: []float32{1, 0}}},
		Stage:      func() error { return stageErr },
	})
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error, got %v", err)
	}
	count, _ := store.CountRecords(ctx, "c")
	if count != 0 {
		t.Errorf("count after rollback = %d", count)
	}
	info, _ := store.GetCollection(ctx, "c")
	if info.Generation != 0 || info.Dimension != 0 {
		t.Errorf("collection changed after rollback: %+v", info)
	}
}

func TestSQLiteStorage_GetRecords(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	_ = store.CreateCollection(ctx, &models.CollectionInfo{Name: "c", Metric: "cosine"})
	var recs []*models.Record
	for _, id := range []string{"x", "y", "z"} {
		recs = append(recs, &models.Record{ID: id, Text: "text " + id, Embedding: []float32{1}})
	}
	if _, err := store.BatchUpsert(ctx, &UpsertBatch{Collection: "c", Dimension: 1, Records: recs}); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetRecords(ctx, "c", []string{"x", "z", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["x"] == nil || got["z"] == nil {
		t.Errorf("got %v", got)
	}
	if _, err := store.GetRecord(ctx, "c", "missing"); !errors.Is(err, models.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSQLiteStorage_IngestRuns(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(-time.Minute)
	runs := []*IngestRun{
		{ID: "r1", Collection: "c", Source: "a.parquet", Records: 10, Batches: 1, Committed: 1, StartedAt: start, FinishedAt: start},
		{ID: "r2", Collection: "c", Source: "b.csv", Records: 5, Batches: 1, Committed: 0, Error: "boom", StartedAt: start.Add(time.Second), FinishedAt: start.Add(time.Second)},
	}
	for _, r := range runs {
		if err := store.SaveIngestRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	got, err := store.ListIngestRuns(ctx, "c", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[0].Error != "boom" {
		t.Errorf("got %+v", got)
	}
}
