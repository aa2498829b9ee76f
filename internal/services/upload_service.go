package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"datasight/internal/analytics"
	"datasight/internal/charts"
	"datasight/internal/config"
	"datasight/internal/dataset"
	"datasight/internal/files"
	"datasight/internal/infrastructure"
	"datasight/internal/ingest"
	"datasight/internal/validation"
)

// Chart kinds accepted by UploadService.Chart.
const (
	ChartKindBar  = "bar"
	ChartKindLine = "line"
)

// ChartImage is a rendered chart together with the parameters that produced it.
type ChartImage struct {
	Kind     string
	Category string
	Value    string
	PNG      []byte
}

// UploadResult is the outcome of processing a freshly uploaded file.
type UploadResult struct {
	File    files.StoredFile
	Preview *dataset.Table
	Summary *analytics.Summary
	Charts  []ChartImage
}

// RowsPage is one window of table rows for incremental loading.
type RowsPage struct {
	Headers []string
	Columns []dataset.Column
	Rows    [][]string
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// UploadService handles storage and processing of uploaded data files.
type UploadService struct {
	cfg        config.UploadConfig
	store      *files.Store
	reader     *ingest.Reader
	summarizer *analytics.Summarizer
	charts     *charts.Builder
	validator  *validation.FileValidator
	logger     *slog.Logger
}

// NewUploadService creates an upload service with injected dependencies.
func NewUploadService(cfg config.UploadConfig, store *files.Store, reader *ingest.Reader, summarizer *analytics.Summarizer, charts *charts.Builder, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		cfg:        cfg,
		store:      store,
		reader:     reader,
		summarizer: summarizer,
		charts:     charts,
		validator:  validation.NewFileValidator(logger),
		logger:     logger,
	}
}

// Process saves the upload, parses it into a typed table, computes the
// statistical summary and renders the default charts. size is the declared
// request size; the final cap is enforced against the bytes actually written.
func (s *UploadService) Process(ctx context.Context, originalName string, size int64, src io.Reader) (*UploadResult, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), ".")
	if !s.allowedExtension(ext) {
		return nil, fmt.Errorf("%w: extension %q is not allowed", ErrUnsupportedFormat, ext)
	}
	if size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}

	stored, err := s.store.SaveUpload(originalName, io.LimitReader(src, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if stored.Size > s.cfg.MaxFileSize {
		s.discard(ctx, stored.Name)
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, stored.Size, s.cfg.MaxFileSize)
	}

	path, err := s.store.UploadPath(stored.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve upload: %w", err)
	}
	if err := s.validator.ValidateFile(path); err != nil {
		s.discard(ctx, stored.Name)
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	s.logger.InfoContext(ctx, "upload stored",
		slog.String("file", stored.Name),
		slog.Int64("size", stored.Size))

	parseStart := time.Now()
	table, err := s.Table(ctx, stored.Name)
	if err != nil {
		infrastructure.RecordUpload(ctx, ext, stored.Size, 0, time.Since(parseStart), err)
		return nil, err
	}
	infrastructure.RecordUpload(ctx, ext, stored.Size, table.NumRows(), time.Since(parseStart), nil)

	summary, err := s.summarizer.Summarize(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("summarize upload: %w", err)
	}

	result := &UploadResult{
		File:    stored,
		Preview: table.Head(s.cfg.PreviewRows),
		Summary: summary,
		Charts:  s.defaultCharts(ctx, table),
	}
	return result, nil
}

// Table loads a previously stored upload and runs the full parsing pipeline.
// Files above the large-file threshold are truncated to the configured row
// limit before analysis.
func (s *UploadService) Table(ctx context.Context, name string) (*dataset.Table, error) {
	stat, err := s.store.StatUpload(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, name)
	}
	path, err := s.store.UploadPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, name)
	}

	opts := ingest.Options{}
	if stat.Size > s.cfg.LargeFileThreshold {
		opts.RowLimit = s.cfg.LargeFileRowLimit
		s.logger.InfoContext(ctx, "large file truncated for analysis",
			slog.String("file", name),
			slog.Int64("size", stat.Size),
			slog.Int("row_limit", opts.RowLimit))
	}

	table, err := s.reader.ReadFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	table = dataset.Clean(table)
	if table.NumRows() == 0 || table.NumColumns() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, name)
	}
	dataset.InferTypes(table)
	return table, nil
}

// Rows returns one page of rows from a stored upload for load-more style
// pagination. A limit of zero falls back to the configured preview size.
func (s *UploadService) Rows(ctx context.Context, name string, offset, limit int) (*RowsPage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	if limit == 0 {
		limit = s.cfg.PreviewRows
	}

	table, err := s.Table(ctx, name)
	if err != nil {
		return nil, err
	}

	total := table.NumRows()
	page := &RowsPage{
		Headers: table.Headers,
		Columns: table.Columns,
		Rows:    [][]string{},
		Total:   total,
		Offset:  offset,
		Limit:   limit,
	}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page.Rows = table.Rows[offset:end]
		page.HasMore = end < total
	}
	return page, nil
}

// Chart renders a single chart over a stored upload. Bar charts need a
// category column; line charts additionally need a numeric value column.
func (s *UploadService) Chart(ctx context.Context, name, kind, category, value string) (*ChartImage, error) {
	table, err := s.Table(ctx, name)
	if err != nil {
		return nil, err
	}

	var png []byte
	switch kind {
	case ChartKindBar:
		png, err = s.charts.Bar(ctx, table, category)
	case ChartKindLine:
		png, err = s.charts.Line(ctx, table, category, value)
	default:
		return nil, fmt.Errorf("%w: unknown chart kind %q", ErrInvalidInput, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &ChartImage{Kind: kind, Category: category, Value: value, PNG: png}, nil
}

// ListUploads returns stored uploads newest first.
func (s *UploadService) ListUploads(ctx context.Context) ([]files.StoredFile, error) {
	uploads, err := s.store.ListUploads()
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// defaultCharts renders the charts shown right after an upload: a bar chart
// over the first text column and a line chart over the first text and first
// numeric column. Chart failures are logged and skipped; a table that cannot
// be charted is not an error.
func (s *UploadService) defaultCharts(ctx context.Context, table *dataset.Table) []ChartImage {
	var textCol, numericCol string
	for _, col := range table.Columns {
		switch {
		case col.Type == dataset.TypeText && textCol == "":
			textCol = col.Name
		case col.Type == dataset.TypeNumeric && numericCol == "":
			numericCol = col.Name
		}
	}

	var bar, line *ChartImage
	g, gctx := errgroup.WithContext(ctx)
	if textCol != "" {
		g.Go(func() error {
			png, err := s.charts.Bar(gctx, table, textCol)
			if err != nil {
				s.logger.WarnContext(gctx, "default bar chart skipped",
					slog.String("column", textCol),
					slog.String("error", err.Error()))
				return nil
			}
			bar = &ChartImage{Kind: ChartKindBar, Category: textCol, PNG: png}
			return nil
		})
	}
	if textCol != "" && numericCol != "" {
		g.Go(func() error {
			png, err := s.charts.Line(gctx, table, textCol, numericCol)
			if err != nil {
				s.logger.WarnContext(gctx, "default line chart skipped",
					slog.String("category", textCol),
					slog.String("value", numericCol),
					slog.String("error", err.Error()))
				return nil
			}
			line = &ChartImage{Kind: ChartKindLine, Category: textCol, Value: numericCol, PNG: png}
			return nil
		})
	}
	_ = g.Wait()

	images := make([]ChartImage, 0, 2)
	if bar != nil {
		images = append(images, *bar)
	}
	if line != nil {
		images = append(images, *line)
	}
	return images
}

// discard removes a stored upload that failed post-save checks.
func (s *UploadService) discard(ctx context.Context, name string) {
	if err := s.store.RemoveUpload(name); err != nil {
		s.logger.WarnContext(ctx, "rejected upload not removed",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

func (s *UploadService) allowedExtension(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
