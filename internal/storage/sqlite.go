// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/pkg/utils"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		metric TEXT NOT NULL,
		dimension INTEGER NOT NULL DEFAULT 0,
		generation INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		text TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id),
		FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_records_seq ON records(collection, seq);

	CREATE TABLE IF NOT EXISTS ingest_runs (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		source TEXT,
		records INTEGER NOT NULL,
		batches INTEGER NOT NULL,
		committed INTEGER NOT NULL,
		error TEXT,
		started_at TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ingest_runs_collection ON ingest_runs(collection, started_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateCollection inserts a collection. Returns models.ErrCollectionExists on a duplicate name.
func (s *SQLiteStorage) CreateCollection(ctx context.Context, info *models.CollectionInfo) error {
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, metric, dimension, generation, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		info.Name, info.Metric, info.Dimension, info.Generation, info.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", models.ErrCollectionExists, info.Name)
	}
	return err
}

// GetCollection returns a collection by name with its current record count.
func (s *SQLiteStorage) GetCollection(ctx context.Context, name string) (*models.CollectionInfo, error) {
	var info models.CollectionInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT c.name, c.metric, c.dimension, c.generation, c.created_at,
		        (SELECT COUNT(*) FROM records r WHERE r.collection = c.name)
		 FROM collections c WHERE c.name = ?`, name,
	).Scan(&info.Name, &info.Metric, &info.Dimension, &info.Generation, &info.CreatedAt, &info.Count)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListCollections returns all collections ordered by name.
func (s *SQLiteStorage) ListCollections(ctx context.Context) ([]*models.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, c.metric, c.dimension, c.generation, c.created_at,
		        (SELECT COUNT(*) FROM records r WHERE r.collection = c.name)
		 FROM collections c ORDER BY c.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CollectionInfo
	for rows.Next() {
		var info models.CollectionInfo
		if err := rows.Scan(&info.Name, &info.Metric, &info.Dimension, &info.Generation, &info.CreatedAt, &info.Count); err != nil {
			return nil, err
		}
		out = append(out, &info)
	}
	return out, rows.Err()
}

// CountCollections returns the number of collections.
func (s *SQLiteStorage) CountCollections(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&count)
	return count, err
}

// DeleteCollection removes a collection and its records.
func (s *SQLiteStorage) DeleteCollection(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrCollectionNotFound, name)
	}
	return nil
}

// BatchUpsert writes records in one transaction and bumps the collection
// generation. Existing ids keep their insertion sequence. Returns the new generation.
func (s *SQLiteStorage) BatchUpsert(ctx context.Context, batch *UpsertBatch) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var dimension int
	var generation, seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT dimension, generation FROM collections WHERE name = ?`, batch.Collection,
	).Scan(&dimension, &generation)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", models.ErrCollectionNotFound, batch.Collection)
	}
	if err != nil {
		return 0, err
	}
	if dimension != 0 && batch.Dimension != 0 && dimension != batch.Dimension {
		return 0, fmt.Errorf("%w: collection %s has dimension %d, batch has %d",
			models.ErrDimensionMismatch, batch.Collection, dimension, batch.Dimension)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM records WHERE collection = ?`, batch.Collection,
	).Scan(&seq); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (collection, id, seq, text, metadata, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET
		   text = excluded.text,
		   metadata = excluded.metadata,
		   embedding = excluded.embedding,
		   updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range batch.Records {
		metadataJSON, err := models.EncodeMetadata(rec.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal metadata for %s: %w", rec.ID, err)
		}
		seq++
		if _, err := stmt.ExecContext(ctx,
			batch.Collection, rec.ID, seq, rec.Text, string(metadataJSON),
			utils.Float32sToBytes(rec.Embedding), now, now,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
		rec.UpdatedAt = now
	}

	generation++
	if _, err := tx.ExecContext(ctx,
		`UPDATE collections
		 SET generation = ?, dimension = CASE WHEN dimension = 0 THEN ? ELSE dimension END
		 WHERE name = ?`,
		generation, batch.Dimension, batch.Collection,
	); err != nil {
		return 0, err
	}

	if batch.Stage != nil {
		if err := batch.Stage(); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return generation, nil
}

const recordColumns = `id, text, metadata, embedding, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var rec models.Record
	var metadataJSON sql.NullString
	var blob []byte
	if err := row.Scan(&rec.ID, &rec.Text, &metadataJSON, &blob, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	md, err := models.DecodeMetadata([]byte(metadataJSON.String))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Metadata = md
	if rec.Embedding, err = utils.BytesToFloat32s(blob); err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// GetRecord returns a record by id.
func (s *SQLiteStorage) GetRecord(ctx context.Context, collection, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE collection = ? AND id = ?`, collection, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrRecordNotFound, id)
	}
	return rec, err
}

// maxParams stays under SQLite's default host parameter limit.
const maxParams = 900

// GetRecords returns the records with the given ids. Missing ids are absent from the map.
func (s *SQLiteStorage) GetRecords(ctx context.Context, collection string, ids []string) (map[string]*models.Record, error) {
	out := make(map[string]*models.Record, len(ids))
	for start := 0; start < len(ids); start += maxParams {
		end := start + maxParams
		if end > len(ids) {
			end = len(ids)
		}
		part := ids[start:end]
		args := make([]interface{}, 0, len(part)+1)
		args = append(args, collection)
		for _, id := range part {
			args = append(args, id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(part)), ",")
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+recordColumns+` FROM records WHERE collection = ? AND id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[rec.ID] = rec
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListRecords streams every record of a collection in insertion order.
func (s *SQLiteStorage) ListRecords(ctx context.Context, collection string, fn func(*models.Record) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountRecords returns the number of records in a collection.
func (s *SQLiteStorage) CountRecords(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&count)
	return count, err
}

// SaveIngestRun inserts or replaces an ingest run.
func (s *SQLiteStorage) SaveIngestRun(ctx context.Context, run *IngestRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ingest_runs
		 (id, collection, source, records, batches, committed, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, run.Source, run.Records, run.Batches, run.Committed,
		run.Error, run.StartedAt, run.FinishedAt,
	)
	return err
}

// ListIngestRuns returns the most recent ingest runs of a collection, newest first.
func (s *SQLiteStorage) ListIngestRuns(ctx context.Context, collection string, limit int) ([]*IngestRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection, source, records, batches, committed, error, started_at, finished_at
		 FROM ingest_runs WHERE collection = ? ORDER BY started_at DESC LIMIT ?`,
		collection, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*IngestRun
	for rows.Next() {
		var run IngestRun
		var source, errText sql.NullString
		if err := rows.Scan(&run.ID, &run.Collection, &source, &run.Records, &run.Batches,
			&run.Committed, &errText, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		run.Source = source.String
		run.Error = errText.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
