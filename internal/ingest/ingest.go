package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// Options controls how much of a file is read.
type Options struct {
	// RowLimit caps the number of data rows kept, 0 means unlimited.
	RowLimit int
}

// Reader parses uploaded files into tables.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a file reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFile parses the file at path according to its extension.
// The returned table is raw parser output; callers run dataset.Clean
// and dataset.InferTypes on it.
func (r *Reader) ReadFile(ctx context.Context, path string, opts Options) (*dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.logger.InfoContext(ctx, "parsing uploaded file",
		slog.String("path", filepath.Base(path)),
		slog.String("extension", ext),
		slog.Int("row_limit", opts.RowLimit))

	var table *dataset.Table
	var err error

	switch ext {
	case ".xlsx":
		table, err = readXLSX(path, opts)
	case ".xls":
		table, err = readXLS(path, opts)
	case ".csv":
		table, err = readCSV(path, opts)
	case ".pdf":
		table, err = readPDF(path, opts)
	default:
		return nil, errors.NewAppValidationError(fmt.Sprintf("unsupported file extension %q", ext))
	}

	if err != nil {
		r.logger.ErrorContext(ctx, "failed to parse file",
			slog.String("path", filepath.Base(path)),
			slog.String("error", err.Error()))
		return nil, err
	}

	r.logger.InfoContext(ctx, "file parsed",
		slog.String("path", filepath.Base(path)),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))

	return table, nil
}

// limitRows applies the row cap after the header row has been split off.
func limitRows(rows [][]string, limit int) [][]string {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
