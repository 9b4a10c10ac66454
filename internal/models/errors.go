package models

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable signals that the persistence location cannot be opened or created.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotConnected signals a query against an engine or collection that is not open.
	ErrNotConnected = errors.New("not connected")
	// ErrDimensionMismatch signals a vector whose length differs from the collection dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrSchemaViolation signals a record with a missing id, empty text, or non-scalar metadata.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrInvalidQuery signals an empty query or a result count below one.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingFailure signals an embedding provider failure.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrPartialBatchFailure signals that a sub-batch of an ingest failed.
	ErrPartialBatchFailure = errors.New("partial batch failure")
	// ErrCollectionExists signals a duplicate collection.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrCollectionNotFound signals a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrRecordNotFound signals a missing record.
	ErrRecordNotFound = errors.New("record not found")
)

// BatchError reports the sub-batch that failed during an ingest. Sub-batches
// before Batch were committed; Batch and everything after it were not.
type BatchError struct {
	Batch int
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: batch %d of %d: %v", ErrPartialBatchFailure.Error(), e.Batch+1, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Is reports ErrPartialBatchFailure so callers can match either the batch
// failure or its cause.
func (e *BatchError) Is(target error) bool { return target == ErrPartialBatchFailure }
