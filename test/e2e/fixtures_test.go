package e2e

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/kujo/internal/extract"
	"github.com/hyperjump/kujo/internal/indexer"
	"github.com/hyperjump/kujo/internal/models"
)

func TestWriteFixture_AllExtensionsExtractable(t *testing.T) {
	rows := BuildCorpus(3).Complaints
	dir := t.TempDir()
	e := extract.NewExtractor()
	for _, ext := range SupportedFileExtensions {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "complaints"+ext)
			if err := WriteFixture(path, rows); err != nil {
				t.Fatalf("WriteFixture: %v", err)
			}
			table, err := e.Extract(path)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			records, err := indexer.RowRecords(table, indexer.SourceIDs(table), 0)
			if err != nil {
				t.Fatalf("RowRecords: %v", err)
			}
			if len(records) != len(rows) {
				t.Fatalf("records = %d, want %d", len(records), len(rows))
			}
			r := records[1]
			if r.Text != rows[1].Text {
				t.Errorf("text = %q, want %q", r.Text, rows[1].Text)
			}
			if got := r.Metadata.String(models.FieldComplaintID); got != rows[1].ComplaintID {
				t.Errorf("complaint_id = %q, want %q", got, rows[1].ComplaintID)
			}
			if got := r.Metadata.String(models.FieldDate); got != rows[1].Date {
				t.Errorf("date = %q, want %q", got, rows[1].Date)
			}
			if got := r.Metadata.String(models.FieldProduct); got != rows[1].Product {
				t.Errorf("product = %q, want %q", got, rows[1].Product)
			}
		})
	}
}

func TestWriteFixture_unknownExtension(t *testing.T) {
	if err := WriteFixture(filepath.Join(t.TempDir(), "x.pdf"), nil); err == nil {
		t.Error("expected error")
	}
}
