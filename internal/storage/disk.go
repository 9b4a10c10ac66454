// Package storage provides disk usage helpers for the data directory.
package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// Usage breaks down the bytes held by a data directory.
type Usage struct {
	Database int64 `json:"database_bytes"`
	Index    int64 `json:"index_bytes"`
	Total    int64 `json:"total_bytes"`
}

// DataDirUsage sums the SQLite files (database, WAL, shared memory) separately
// from everything else under dataDir, which is index snapshots.
// A missing directory reports zero usage.
func DataDirUsage(dataDir string) (Usage, error) {
	var u Usage
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if isDatabaseFile(info.Name()) {
			u.Database += info.Size()
		} else {
			u.Index += info.Size()
		}
		return nil
	})
	u.Total = u.Database + u.Index
	return u, err
}

func isDatabaseFile(name string) bool {
	for _, suffix := range []string{".db", ".db-wal", ".db-shm", ".db-journal"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
