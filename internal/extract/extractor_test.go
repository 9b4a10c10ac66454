package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

type complaintRow struct {
	ComplaintID int64     `parquet:"complaint_id"`
	TextChunk   string    `parquet:"text_chunk"`
	Product     string    `parquet:"product"`
	State       string    `parquet:"state,optional"`
	ChunkIndex  int32     `parquet:"chunk_index"`
	Embedding   []float32 `parquet:"embedding,list"`
}

func writeParquet(t *testing.T, rows []complaintRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.parquet")
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExtract_parquet(t *testing.T) {
	path := writeParquet(t, []complaintRow{
		{ComplaintID: 101, TextChunk: "charged twice", Product: "Credit card", State: "CA", Embedding: []float32{0.1, 0.2, 0.3}},
		{ComplaintID: 102, TextChunk: "loan delayed", Product: "Mortgage", ChunkIndex: 1, Embedding: []float32{0.4, 0.5, 0.6}},
	})
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	if !got.HasColumn("text_chunk") || !got.HasColumn(EmbeddingColumn) {
		t.Errorf("columns = %v", got.Columns)
	}
	r0 := got.Rows[0]
	if r0.Index != 0 || r0.Values["text_chunk"] != "charged twice" || r0.Values["complaint_id"] != int64(101) {
		t.Errorf("row 0 = %+v", r0)
	}
	if r0.Values["state"] != "CA" {
		t.Errorf("state = %v", r0.Values["state"])
	}
	if len(r0.Embedding) != 3 || r0.Embedding[2] != 0.3 {
		t.Errorf("embedding = %v", r0.Embedding)
	}
	r1 := got.Rows[1]
	if _, ok := r1.Values["state"]; ok {
		t.Errorf("null state should be absent: %v", r1.Values)
	}
	if r1.Values["chunk_index"] != int64(1) {
		t.Errorf("chunk_index = %#v", r1.Values["chunk_index"])
	}
	if _, ok := r1.Values[EmbeddingColumn]; ok {
		t.Error("embedding should not stay in values")
	}
}

type datedRow struct {
	TextChunk    string    `parquet:"text_chunk"`
	DateReceived time.Time `parquet:"date_received,timestamp(microsecond)"`
	Opened       int32     `parquet:"opened,date"`
}

func TestExtract_parquetDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dated.parquet")
	rows := []datedRow{
		{TextChunk: "escrow shortage", DateReceived: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Opened: 19737},
		{TextChunk: "wire delayed", DateReceived: time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v := got.Rows[0].Values["date_received"]; v != "2024-01-15" {
		t.Errorf("row 0 date_received = %#v", v)
	}
	if v := got.Rows[0].Values["opened"]; v != "2024-01-15" {
		t.Errorf("row 0 opened = %#v", v)
	}
	if v := got.Rows[1].Values["date_received"]; v != "2024-01-16 09:30:00" {
		t.Errorf("row 1 date_received = %#v", v)
	}
}

func TestExtractBytes_csv(t *testing.T) {
	content := []byte("\xef\xbb\xbfid,text_chunk,product,embedding\n" +
		"c1,Fee increased,Checking account,\"[0.5, 0.5]\"\n" +
		"c2,Card declined,,\n")
	got, err := NewExtractor().ExtractBytes(content, ".csv")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(got.Columns) != 4 || got.Columns[0] != "id" {
		t.Fatalf("columns = %v", got.Columns)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d", len(got.Rows))
	}
	if got.Rows[0].Values["product"] != "Checking account" {
		t.Errorf("row 0 = %v", got.Rows[0].Values)
	}
	if len(got.Rows[0].Embedding) != 2 {
		t.Errorf("embedding = %v", got.Rows[0].Embedding)
	}
	if _, ok := got.Rows[1].Values["product"]; ok {
		t.Error("empty cell should be omitted")
	}
	if got.Rows[1].Embedding != nil {
		t.Errorf("embedding = %v", got.Rows[1].Embedding)
	}
}

func TestExtractBytes_csvEmpty(t *testing.T) {
	got, err := NewExtractor().ExtractBytes(nil, ".csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("rows = %d", len(got.Rows))
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "text_chunk")
	f.SetCellValue("Sheet1", "B1", "issue")
	f.SetCellValue("Sheet1", "A2", "Payment misapplied")
	f.SetCellValue("Sheet1", "B2", "Payment processing")
	f.SetCellValue("Sheet1", "A3", "Limit decreased")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d", len(got.Rows))
	}
	if got.Rows[0].Values["issue"] != "Payment processing" {
		t.Errorf("row 0 = %v", got.Rows[0].Values)
	}
	if got.Rows[1].Index != 1 || got.Rows[1].Values["text_chunk"] != "Limit decreased" {
		t.Errorf("row 1 = %+v", got.Rows[1])
	}
}

func TestExtract_excelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "text_chunk")
	f.SetCellValue("Sheet1", "A2", "Searchable text")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0].Values["text_chunk"] != "Searchable text" {
		t.Errorf("got %+v", got.Rows)
	}
}

func TestExtractBytes_jsonl(t *testing.T) {
	content := []byte(`{"id": "a", "text_chunk": "wire delayed", "total_chunks": 2, "score": 0.5, "tags": ["x"], "embedding": [1, 0]}

{"id": "b", "text_chunk": "fee", "flag": true, "note": null}
`)
	got, err := NewExtractor().ExtractBytes(content, ".jsonl")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d", len(got.Rows))
	}
	r0 := got.Rows[0]
	if r0.Values["total_chunks"] != int64(2) || r0.Values["score"] != 0.5 {
		t.Errorf("row 0 = %v", r0.Values)
	}
	if _, ok := r0.Values["tags"]; ok {
		t.Error("nested value should be dropped")
	}
	if len(r0.Embedding) != 2 || r0.Embedding[0] != 1 {
		t.Errorf("embedding = %v", r0.Embedding)
	}
	r1 := got.Rows[1]
	if r1.Index != 1 || r1.Values["flag"] != true {
		t.Errorf("row 1 = %+v", r1)
	}
	if _, ok := r1.Values["note"]; ok {
		t.Error("null should be dropped")
	}
}

func TestExtractBytes_jsonlInvalid(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("{not json}\n"), ".jsonl"); err == nil {
		t.Error("expected error for invalid jsonl")
	}
}

func TestExtractBytes_unsupported(t *testing.T) {
	_, err := NewExtractor().ExtractBytes([]byte("raw"), ".pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Extract("/nonexistent/path/file.csv"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtract_parquetCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	if err := os.WriteFile(path, []byte("not parquet"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor().Extract(path); err == nil {
		t.Error("expected error for corrupt parquet")
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".parquet", ".CSV", ".xlsx", ".jsonl"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	if Supported(".txt") {
		t.Error("Supported(.txt) = true")
	}
}

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{nil, 0},
		{"", 0},
		{"[0.1, 0.2, 0.3]", 3},
		{"[0.1 0.2\n 0.3 0.4]", 4},
		{[]interface{}{1.0, 2.0}, 2},
		{[]float64{1, 2, 3}, 3},
	}
	for _, tt := range tests {
		got, err := ParseEmbedding(tt.in)
		if err != nil {
			t.Errorf("ParseEmbedding(%v): %v", tt.in, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("ParseEmbedding(%v) len = %d, want %d", tt.in, len(got), tt.want)
		}
	}
	if _, err := ParseEmbedding("[a, b]"); err == nil {
		t.Error("expected error for non-numeric embedding")
	}
}
