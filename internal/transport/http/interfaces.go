package http

import (
	"context"
	"io"

	"datasight/internal/files"
	"datasight/internal/services"
)

// UploadServiceInterface defines the upload operations handlers depend on
type UploadServiceInterface interface {
	Process(ctx context.Context, originalName string, size int64, src io.Reader) (*services.UploadResult, error)
	Rows(ctx context.Context, name string, offset, limit int) (*services.RowsPage, error)
	Chart(ctx context.Context, name, kind, category, value string) (*services.ChartImage, error)
	ListUploads(ctx context.Context) ([]files.StoredFile, error)
}

// AnalysisServiceInterface defines the analysis operations handlers depend on
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, provider, upload string) (*services.AnalysisResult, error)
	Providers() []string
}

// ReportServiceInterface defines the report operations handlers depend on
type ReportServiceInterface interface {
	Generate(ctx context.Context, upload, provider string) (files.StoredFile, error)
	Open(ctx context.Context, name string) (io.ReadCloser, files.StoredFile, error)
	ListReports(ctx context.Context) ([]files.StoredFile, error)
}

// HealthServiceInterface defines the health operations handlers depend on
type HealthServiceInterface interface {
	Check(ctx context.Context) *services.HealthStatus
}
