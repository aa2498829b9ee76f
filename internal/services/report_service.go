package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"datasight/internal/files"
	"datasight/internal/infrastructure"
	"datasight/internal/report"
)

// ReportService assembles downloadable pdf reports for stored uploads.
type ReportService struct {
	builder  *report.Builder
	store    *files.Store
	uploads  *UploadService
	analysis *AnalysisService
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportService creates a report service with injected dependencies.
func NewReportService(builder *report.Builder, store *files.Store, uploads *UploadService, analysis *AnalysisService, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		builder:  builder,
		store:    store,
		uploads:  uploads,
		analysis: analysis,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate builds a pdf report for the stored upload. When provider is
// non-empty the report includes commentary from that analysis provider;
// commentary failures degrade to a report without the commentary section.
func (s *ReportService) Generate(ctx context.Context, upload, provider string) (files.StoredFile, error) {
	stat, err := s.store.StatUpload(upload)
	if err != nil {
		return files.StoredFile{}, fmt.Errorf("%w: %s", ErrUploadNotFound, upload)
	}

	table, err := s.uploads.Table(ctx, upload)
	if err != nil {
		return files.StoredFile{}, err
	}

	summary, err := s.uploads.summarizer.Summarize(ctx, table)
	if err != nil {
		return files.StoredFile{}, fmt.Errorf("summarize for report: %w", err)
	}

	var commentary string
	if provider != "" {
		result, err := s.analysis.Analyze(ctx, provider, upload)
		switch {
		case err == nil:
			commentary = result.Commentary
		default:
			s.logger.WarnContext(ctx, "report commentary skipped",
				slog.String("provider", provider),
				slog.String("file", upload),
				slog.String("error", err.Error()))
		}
	}

	var charts [][]byte
	for _, img := range s.uploads.defaultCharts(ctx, table) {
		charts = append(charts, img.PNG)
	}

	buildStart := time.Now()
	data, err := s.builder.Build(ctx, report.Params{
		Filename:   upload,
		UploadedAt: stat.ModifiedAt,
		FileSize:   stat.Size,
		Table:      table,
		Summary:    summary,
		Commentary: commentary,
		Charts:     charts,
	})
	if err != nil {
		return files.StoredFile{}, fmt.Errorf("build report: %w", err)
	}
	infrastructure.RecordReport(ctx, len(charts), time.Since(buildStart))

	name := reportName(upload, s.now())
	stored, err := s.store.SaveReport(name, data)
	if err != nil {
		return files.StoredFile{}, fmt.Errorf("save report: %w", err)
	}

	s.logger.InfoContext(ctx, "report generated",
		slog.String("report", stored.Name),
		slog.String("upload", upload),
		slog.Int64("size", stored.Size))
	return stored, nil
}

// Open returns the report file for download along with its metadata.
// The caller closes the reader.
func (s *ReportService) Open(ctx context.Context, name string) (io.ReadCloser, files.StoredFile, error) {
	f, stat, err := s.store.OpenReport(name)
	if err != nil {
		return nil, files.StoredFile{}, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return f, stat, nil
}

// ListReports returns generated reports newest first.
func (s *ReportService) ListReports(ctx context.Context) ([]files.StoredFile, error) {
	reports, err := s.store.ListReports()
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// reportName derives the report filename from the upload it covers.
func reportName(upload string, at time.Time) string {
	base := upload
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return fmt.Sprintf("report_%s_%s.pdf", base, at.Format("20060102_150405"))
}
