package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirUsage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "kujo.db"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kujo.db-wal"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "index")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "complaints-3.vec"), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := DataDirUsage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Database != 7 || got.Index != 3 || got.Total != 10 {
		t.Errorf("got %+v", got)
	}

	// Missing directory reports zero.
	got, err = DataDirUsage(filepath.Join(dir, "nonexistent"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 0 {
		t.Errorf("missing dir: got %+v", got)
	}
}
