package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/ai"
	"datasight/internal/config"
	"datasight/internal/report"
)

func newTestHealthService(t *testing.T, paths config.PathsConfig, analyzers ...ai.Analyzer) *HealthService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	uploads := newTestUploadService(t)
	registry := ai.NewRegistry(config.AIConfig{}, logger)
	for _, a := range analyzers {
		registry.Register(a)
	}
	analysis := NewAnalysisService(registry, uploads, logger)
	reports := NewReportService(report.NewBuilder(logger, ""), uploads.store, uploads, analysis, logger)
	return NewHealthService("1.0.0", paths, uploads, reports, analysis, logger)
}

func TestHealthServiceCheckHealthy(t *testing.T) {
	paths := config.PathsConfig{UploadsDir: t.TempDir(), ReportsDir: t.TempDir()}
	svc := newTestHealthService(t, paths, &stubAnalyzer{name: ai.ProviderYandex})

	status := svc.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())

	uploads, ok := status.Services["uploads"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "healthy", uploads.Status)

	analysis, ok := status.Services["analysis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{"yandex"}, analysis["providers"])
}

func TestHealthServiceCheckDegraded(t *testing.T) {
	paths := config.PathsConfig{UploadsDir: "/nonexistent/uploads", ReportsDir: t.TempDir()}
	svc := newTestHealthService(t, paths)

	status := svc.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)

	analysis, ok := status.Services["analysis"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "unavailable", analysis.Status)
}
