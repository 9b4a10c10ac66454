package indexer

import (
	"testing"

	"github.com/hyperjump/kujo/internal/models"
)

func TestChunker_Chunk(t *testing.T) {
	c := NewChunker(3, 1)
	chunks := c.Chunk("one two three four five six seven")
	want := []string{"one two three", "three four five", "five six seven"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v", chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunker_ChunkEmpty(t *testing.T) {
	c := NewChunker(5, 1)
	if chunks := c.Chunk("   \n\t  "); chunks != nil {
		t.Errorf("empty text should return nil, got %v", chunks)
	}
}

func TestNewChunker_Disabled(t *testing.T) {
	if NewChunker(0, 10) != nil {
		t.Error("size 0 should disable chunking")
	}
}

func TestChunker_ChunkRecord(t *testing.T) {
	c := NewChunker(2, 0)
	rec := &models.Record{ID: "c1", Text: "a b c d e", Metadata: models.Metadata{models.FieldProduct: "Mortgage"}}
	got := c.ChunkRecord(rec)
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	for i, r := range got {
		if r.Metadata[models.FieldChunkIndex] != int64(i) || r.Metadata[models.FieldTotalChunks] != int64(3) {
			t.Errorf("chunk %d metadata = %v", i, r.Metadata)
		}
		if r.Metadata.String(models.FieldComplaintID) != "c1" || r.Metadata.String(models.FieldProduct) != "Mortgage" {
			t.Errorf("chunk %d metadata = %v", i, r.Metadata)
		}
	}
	if got[2].ID != "c1_2" || got[2].Text != "e" {
		t.Errorf("last chunk = %+v", got[2])
	}
	if _, ok := rec.Metadata[models.FieldChunkIndex]; ok {
		t.Error("source metadata modified")
	}
}

func TestChunker_ChunkRecordWhole(t *testing.T) {
	tests := []struct {
		name string
		c    *Chunker
		rec  *models.Record
	}{
		{"nil chunker", nil, &models.Record{ID: "x", Text: "a b c d"}},
		{"short text", NewChunker(10, 2), &models.Record{ID: "x", Text: "a b c d"}},
		{"precomputed embedding", NewChunker(2, 0), &models.Record{ID: "x", Text: "a b c d", Embedding: []float32{1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.ChunkRecord(tt.rec)
			if len(got) != 1 || got[0].ID != "x" || got[0].Text != "a b c d" {
				t.Fatalf("got %+v", got)
			}
			if got[0].Metadata[models.FieldTotalChunks] != int64(1) {
				t.Errorf("metadata = %v", got[0].Metadata)
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	if Preprocess("  a \n\t b  ") != "a b" {
		t.Error("expected trimmed and collapsed spaces")
	}
}
