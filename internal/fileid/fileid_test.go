package fileid

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFileID(t *testing.T) {
	id1 := FileID("/foo/bar.parquet")
	id2 := FileID("/foo/bar.parquet")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, prefix) {
		t.Errorf("ID should have prefix %q: got %q", prefix, id1)
	}
	if len(id1) != len(prefix)+2*hashLen {
		t.Errorf("ID length = %d: %q", len(id1), id1)
	}
}

func TestFileID_differentPaths(t *testing.T) {
	if FileID("/foo/bar.csv") == FileID("/foo/baz.csv") {
		t.Error("different paths should give different IDs")
	}
}

func TestFileID_normalized(t *testing.T) {
	id1 := FileID("/foo/bar")
	id2 := FileID("/foo/bar/")
	id3 := FileID("/foo/./bar")
	if id1 != id2 {
		t.Errorf("paths differing only by trailing slash should match: %q vs %q", id1, id2)
	}
	if id1 != id3 {
		t.Errorf("paths with . should normalize: %q vs %q", id1, id3)
	}
}

func TestRowID(t *testing.T) {
	abs, _ := filepath.Abs("complaints.csv")
	id := RowID(abs, 7)
	if id != FileID(abs)+":7" {
		t.Errorf("RowID = %q", id)
	}
	if RowID(abs, 7) == RowID(abs, 8) {
		t.Error("rows should get different IDs")
	}
}
