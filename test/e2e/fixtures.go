package e2e

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions is the list of file extensions used in E2E file-based tests.
// Each format uses a different header convention so column normalization is exercised.
var SupportedFileExtensions = []string{".csv", ".jsonl", ".xlsx", ".parquet"}

// csvHeader follows the public CFPB export.
var csvHeader = []string{"Complaint ID", "Consumer complaint narrative", "Product", "Issue", "Company", "State", "Date received"}

// chunkRow is the shape of a pandas chunk frame written to parquet.
type chunkRow struct {
	ComplaintID string `parquet:"complaint_id"`
	TextChunk   string `parquet:"text_chunk"`
	Product     string `parquet:"product"`
	Issue       string `parquet:"issue"`
	Company     string `parquet:"company"`
	State       string `parquet:"state,optional"`
	Date        string `parquet:"date_received"`
	ChunkIndex  int64  `parquet:"chunk_index"`
	TotalChunks int64  `parquet:"total_chunks"`
}

// WriteFixture writes rows to path in the format given by its extension.
func WriteFixture(path string, rows []Complaint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	ext := filepath.Ext(path)
	switch ext {
	case ".csv":
		return writeCSV(path, rows)
	case ".jsonl":
		return writeJSONL(path, rows)
	case ".xlsx":
		return writeXLSX(path, rows)
	case ".parquet":
		return writeParquet(path, rows)
	default:
		return fmt.Errorf("no fixture writer for %s", ext)
	}
}

func csvRecord(c Complaint) []string {
	return []string{c.ComplaintID, c.Text, c.Product, c.Issue, c.Company, c.State, c.Date}
}

func writeCSV(path string, rows []Complaint) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	for _, c := range rows {
		_ = w.Write(csvRecord(c))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func writeJSONL(path string, rows []Complaint) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, c := range rows {
		if err := enc.Encode(map[string]interface{}{
			"complaint_id": c.ComplaintID,
			"text":         c.Text,
			"product":      c.Product,
			"issue":        c.Issue,
			"company":      c.Company,
			"state":        c.State,
			"date":         c.Date,
		}); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func writeXLSX(path string, rows []Complaint) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := []interface{}{"complaint_id", "narrative", "product", "issue", "company", "state", "date_received"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.ComplaintID, c.Text, c.Product, c.Issue, c.Company, c.State, c.Date}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeParquet(path string, rows []Complaint) error {
	out := make([]chunkRow, len(rows))
	for i, c := range rows {
		out[i] = chunkRow{
			ComplaintID: c.ComplaintID,
			TextChunk:   c.Text,
			Product:     c.Product,
			Issue:       c.Issue,
			Company:     c.Company,
			State:       c.State,
			Date:        c.Date,
			TotalChunks: 1,
		}
	}
	return parquet.WriteFile(path, out)
}
