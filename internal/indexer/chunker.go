package indexer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kujo/internal/models"
)

// Chunker splits text into overlapping word-based chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
// A size <= 0 returns nil; a nil Chunker leaves records whole.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		return nil
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Chunk splits text into overlapping word windows.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var chunks []string
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end >= len(words) {
			break
		}
	}
	return chunks
}

// ChunkRecord splits a record into chunk records "<id>_<n>" carrying
// complaint_id, chunk_index and total_chunks. Records that fit in one chunk or
// already carry an embedding are returned unchanged with the chunk fields set.
func (c *Chunker) ChunkRecord(r *models.Record) []*models.Record {
	md := r.Metadata.Clone()
	if md == nil {
		md = models.Metadata{}
	}
	if md.String(models.FieldComplaintID) == "" {
		md[models.FieldComplaintID] = r.ID
	}
	var parts []string
	if c != nil && len(r.Embedding) == 0 {
		parts = c.Chunk(r.Text)
	}
	if len(parts) <= 1 {
		if _, ok := md[models.FieldChunkIndex]; !ok {
			md[models.FieldChunkIndex] = int64(0)
		}
		if _, ok := md[models.FieldTotalChunks]; !ok {
			md[models.FieldTotalChunks] = int64(1)
		}
		out := *r
		out.Metadata = md
		return []*models.Record{&out}
	}
	out := make([]*models.Record, len(parts))
	for i, text := range parts {
		cmd := md.Clone()
		cmd[models.FieldChunkIndex] = int64(i)
		cmd[models.FieldTotalChunks] = int64(len(parts))
		out[i] = &models.Record{
			ID:       fmt.Sprintf("%s_%d", r.ID, i),
			Text:     text,
			Metadata: cmd,
		}
	}
	return out
}
