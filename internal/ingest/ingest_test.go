package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func newTestReader() *Reader {
	return NewReader(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadFile_CSVComma(t *testing.T) {
	path := writeTempFile(t, "data.csv", []byte("name,value\nalpha,1\nbeta,2\n"))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"beta", "2"}, table.Rows[1])
}

func TestReadFile_CSVSemicolonAndBOM(t *testing.T) {
	path := writeTempFile(t, "data.csv", []byte("\xEF\xBB\xBFname;value\nalpha;1\n"))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, table.Headers)
	assert.Equal(t, []string{"alpha", "1"}, table.Rows[0])
}

func TestReadFile_CSVWindows1251(t *testing.T) {
	encoder := charmap.Windows1251.NewEncoder()
	encoded, err := encoder.Bytes([]byte("город,население\nМосква,13010112\n"))
	require.NoError(t, err)
	path := writeTempFile(t, "data.csv", encoded)

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"город", "население"}, table.Headers)
	assert.Equal(t, "Москва", table.Rows[0][0])
}

func TestReadFile_CSVRowLimit(t *testing.T) {
	path := writeTempFile(t, "data.csv", []byte("n\n1\n2\n3\n4\n5\n"))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{RowLimit: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "value"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"alpha", 10}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"beta", 20}))

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "10", table.Rows[0][1])
}

func TestReadFile_XLSCorrupt(t *testing.T) {
	path := writeTempFile(t, "data.xls", []byte("not a workbook"))

	_, err := newTestReader().ReadFile(context.Background(), path, Options{})
	assert.Error(t, err)
}

func TestReadFile_PDFTable(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	content := [][]string{
		{"city", "population", "year"},
		{"Moscow", "13000000", "2024"},
		{"Kazan", "1300000", "2024"},
	}
	for _, row := range content {
		for _, cell := range row {
			doc.CellFormat(40, 8, cell, "", 0, "L", false, 0, "")
		}
		doc.Ln(8)
	}

	path := filepath.Join(t.TempDir(), "table.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "population", "year"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Moscow", "13000000", "2024"}, table.Rows[0])
	assert.Equal(t, []string{"Kazan", "1300000", "2024"}, table.Rows[1])
}

func TestReadFile_PDFFallsBackToText(t *testing.T) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(0, 10, "Quarterly revenue summary")

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))

	table, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, table.NumRows(), 1)
	assert.GreaterOrEqual(t, table.NumColumns(), 1)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "archive.zip", []byte("zip"))

	_, err := newTestReader().ReadFile(context.Background(), path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c\n1;2;3")))
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}
