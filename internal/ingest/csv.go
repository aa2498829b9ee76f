package ingest

import (
	"bytes"
	"encoding/csv"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// readCSV reads a delimited file, trying utf-8 first and falling back to
// cp1251 and then latin-1 when the bytes are not valid utf-8. The delimiter
// is sniffed from the first line.
func readCSV(path string, opts Options) (*dataset.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read csv file", err)
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to parse csv content", err)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("csv file contains no rows", nil)
	}

	return &dataset.Table{
		Headers: records[0],
		Rows:    limitRows(records[1:], opts.RowLimit),
	}, nil
}

// decodeText returns utf-8 bytes, decoding from cp1251 or latin-1 when needed.
func decodeText(raw []byte) ([]byte, error) {
	// strip BOM
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(raw) {
		return raw, nil
	}

	if decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw); err == nil {
		return decoded, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, errors.NewParsingError("failed to decode csv text", err)
	}
	return decoded, nil
}

// sniffDelimiter picks between semicolon and comma by counting occurrences
// in the first line. Files exported from Russian locale spreadsheets use
// semicolons.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
