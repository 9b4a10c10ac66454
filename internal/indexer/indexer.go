// Package indexer turns tabular ingest sources into complaint records and
// adds them to a collection in batches.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kujo/internal/collection"
	"github.com/hyperjump/kujo/internal/extract"
	"github.com/hyperjump/kujo/internal/fileid"
	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/internal/storage"
)

// Indexer ingests records and tabular files into one collection.
type Indexer struct {
	collection *collection.Collection
	storage    storage.Storage
	extractor  *extract.Extractor
	chunker    *Chunker
	batchSize  int
	limit      int
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for ingest progress.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithChunking splits long texts into word windows of size words with overlap.
func WithChunking(size, overlap int) IndexerOption {
	return func(idx *Indexer) { idx.chunker = NewChunker(size, overlap) }
}

// WithBatchSize sets the sub-batch size passed to the collection.
func WithBatchSize(n int) IndexerOption {
	return func(idx *Indexer) { idx.batchSize = n }
}

// WithLimit ingests at most n rows of each source (all rows when n <= 0).
func WithLimit(n int) IndexerOption {
	return func(idx *Indexer) { idx.limit = n }
}

// NewIndexer creates an indexer writing into c. st records ingest runs and may
// be nil. extractor may be nil; when nil, a default Extractor is used.
func NewIndexer(c *collection.Collection, st storage.Storage, extractor *extract.Extractor, opts ...IndexerOption) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		collection: c,
		storage:    st,
		extractor:  extractor,
		batchSize:  collection.DefaultBatchSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Report summarizes one ingest call.
type Report struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	Rows      int           `json:"rows"`
	Records   int           `json:"records"`
	Batches   int           `json:"batches"`
	Committed int           `json:"committed"`
	Skipped   bool          `json:"skipped,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// IngestRecords preprocesses, chunks and adds records, logging every committed
// sub-batch. The run is recorded in storage whether or not it succeeds.
func (idx *Indexer) IngestRecords(ctx context.Context, source string, records []*models.Record) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.New().String(), Source: source, Rows: len(records)}

	var prepared []*models.Record
	for _, r := range records {
		cp := *r
		cp.Text = Preprocess(r.Text)
		prepared = append(prepared, idx.chunker.ChunkRecord(&cp)...)
	}
	report.Records = len(prepared)

	idx.logger.Info("ingest started",
		zap.String("run_id", report.RunID),
		zap.String("source", source),
		zap.String("collection", idx.collection.Name()),
		zap.Int("records", len(prepared)),
	)
	err := idx.collection.Add(ctx, prepared,
		collection.WithBatchSize(idx.batchSize),
		collection.WithProgress(func(p collection.Progress) {
			report.Batches = p.Total
			report.Committed = p.Committed
			idx.logger.Info("added batch",
				zap.String("source", source),
				zap.Int("batch", p.Batch+1),
				zap.Int("total", p.Total),
				zap.Int("size", p.Size),
			)
		}),
	)
	report.Duration = time.Since(start)
	var batchErr *models.BatchError
	if errors.As(err, &batchErr) {
		report.Batches = batchErr.Total
	}
	idx.saveRun(ctx, report, start, err)
	if err != nil {
		return report, fmt.Errorf("ingest %s: %w", source, err)
	}
	idx.logger.Info("ingest finished",
		zap.String("source", source),
		zap.Int("committed", report.Committed),
		zap.Int("count", idx.collection.Count()),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (idx *Indexer) saveRun(ctx context.Context, report *Report, start time.Time, ingestErr error) {
	if idx.storage == nil {
		return
	}
	run := &storage.IngestRun{
		ID:         report.RunID,
		Collection: idx.collection.Name(),
		Source:     report.Source,
		Records:    report.Records,
		Batches:    report.Batches,
		Committed:  report.Committed,
		StartedAt:  start,
		FinishedAt: start.Add(report.Duration),
	}
	if ingestErr != nil {
		run.Error = ingestErr.Error()
	}
	if err := idx.storage.SaveIngestRun(context.WithoutCancel(ctx), run); err != nil {
		idx.logger.Warn("failed to save ingest run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// IngestFile reads a tabular file and ingests its rows. Record ids come from
// the id column when present, else from the row index.
func (idx *Indexer) IngestFile(ctx context.Context, path string) (*Report, error) {
	table, err := idx.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	records, err := RowRecords(table, SourceIDs(table), idx.limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src := filepath.Base(path)
	for _, r := range records {
		if _, ok := r.Metadata[models.FieldSource]; !ok {
			r.Metadata[models.FieldSource] = src
		}
	}
	return idx.IngestRecords(ctx, path, records)
}

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// IngestWatchedFile ingests a file from a drop folder. Record ids are derived
// from the absolute path and row number so a rewritten file overwrites its
// rows. Skips the file if its first row is already stored with the same mtime
// and size. If allowedExts is non-empty, the extension must be in the list.
func (idx *Indexer) IngestWatchedFile(ctx context.Context, path string, allowedExts []string) (*Report, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return nil, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	if idx.unchanged(ctx, absPath, info) {
		idx.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return &Report{Source: absPath, Skipped: true}, nil
	}

	table, err := idx.extractor.Extract(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	records, err := RowRecords(table, func(r extract.Row) string { return fileid.RowID(absPath, r.Index) }, idx.limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	mtime := strconv.FormatInt(info.ModTime().UnixNano(), 10)
	size := strconv.FormatInt(info.Size(), 10)
	src := filepath.Base(absPath)
	for _, r := range records {
		r.Metadata[metaKeySourcePath] = absPath
		r.Metadata[metaKeySourceMtime] = mtime
		r.Metadata[metaKeySourceSize] = size
		if _, ok := r.Metadata[models.FieldSource]; !ok {
			r.Metadata[models.FieldSource] = src
		}
	}
	return idx.IngestRecords(ctx, absPath, records)
}

// unchanged reports whether the first row of the file is stored with the same mtime and size.
// Values are stored as strings to avoid JSON float64 precision loss (UnixNano exceeds 53 bits).
func (idx *Indexer) unchanged(ctx context.Context, absPath string, info os.FileInfo) bool {
	id := fileid.RowID(absPath, 0)
	if idx.chunker != nil {
		if _, err := idx.collection.Get(ctx, id); err != nil {
			id += "_0"
		}
	}
	rec, err := idx.collection.Get(ctx, id)
	if err != nil {
		return false
	}
	return rec.Metadata.String(metaKeySourcePath) == absPath &&
		rec.Metadata.String(metaKeySourceMtime) == strconv.FormatInt(info.ModTime().UnixNano(), 10) &&
		rec.Metadata.String(metaKeySourceSize) == strconv.FormatInt(info.Size(), 10)
}

// IngestDirectory walks dir and ingests each regular file whose extension is
// in allowedExts (if non-empty; otherwise every supported extension). Returns
// the number of files ingested and the first error encountered, if any.
func (idx *Indexer) IngestDirectory(ctx context.Context, dir string, allowedExts []string, recursive bool) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	if len(allowedExts) == 0 {
		allowedExts = extract.Extensions
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensionAllowed(filepath.Ext(path), allowedExts) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		report, ingestErr := idx.IngestWatchedFile(ctx, path, allowedExts)
		if ingestErr != nil {
			return ingestErr
		}
		if !report.Skipped {
			n++
		}
		return nil
	})
	return n, err
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
