// Package fileid provides deterministic record IDs for rows of watched files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
)

const (
	prefix  = "file:"
	hashLen = 12
)

// FileID returns a stable identifier for the given absolute path.
// Same path always yields the same ID.
func FileID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:hashLen])
}

// RowID returns the record ID of a row of a watched file, "<fileid>:<row>".
// Re-ingesting a rewritten file overwrites the records of the same rows.
func RowID(absolutePath string, row int) string {
	return FileID(absolutePath) + ":" + strconv.Itoa(row)
}
