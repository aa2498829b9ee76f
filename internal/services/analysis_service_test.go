package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/ai"
	"datasight/internal/config"
	"datasight/internal/dataset"
)

type stubAnalyzer struct {
	name       string
	commentary string
	err        error
	gotRows    int
}

func (a *stubAnalyzer) Name() string { return a.name }

func (a *stubAnalyzer) Analyze(ctx context.Context, table *dataset.Table) (string, error) {
	a.gotRows = table.NumRows()
	return a.commentary, a.err
}

func newTestAnalysisService(t *testing.T, analyzers ...ai.Analyzer) (*AnalysisService, *UploadService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	registry := ai.NewRegistry(config.AIConfig{}, logger)
	for _, a := range analyzers {
		registry.Register(a)
	}
	uploads := newTestUploadService(t)
	return NewAnalysisService(registry, uploads, logger), uploads
}

func TestAnalysisServiceAnalyze(t *testing.T) {
	stub := &stubAnalyzer{name: ai.ProviderYandex, commentary: "## Выводы\nданные выглядят полными"}
	svc, uploads := newTestAnalysisService(t, stub)
	result := uploadCSV(t, uploads, "sales.csv", salesCSV)

	analysis, err := svc.Analyze(context.Background(), "yandex", result.File.Name)
	require.NoError(t, err)
	assert.Equal(t, "yandex", analysis.Provider)
	assert.Equal(t, stub.commentary, analysis.Commentary)
	assert.Equal(t, 3, stub.gotRows)
}

func TestAnalysisServiceUnknownProvider(t *testing.T) {
	svc, _ := newTestAnalysisService(t)

	_, err := svc.Analyze(context.Background(), "chatgpt", "whatever.csv")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestAnalysisServiceProviderNotConfigured(t *testing.T) {
	svc, _ := newTestAnalysisService(t)

	_, err := svc.Analyze(context.Background(), "gigachat", "whatever.csv")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestAnalysisServiceUploadNotFound(t *testing.T) {
	stub := &stubAnalyzer{name: ai.ProviderGigaChat, commentary: "ok"}
	svc, _ := newTestAnalysisService(t, stub)

	_, err := svc.Analyze(context.Background(), "gigachat", "20240101_000000_missing.csv")
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestAnalysisServiceProviderFailure(t *testing.T) {
	stub := &stubAnalyzer{name: ai.ProviderYandex, err: errors.New("backend exploded")}
	svc, uploads := newTestAnalysisService(t, stub)
	result := uploadCSV(t, uploads, "sales.csv", salesCSV)

	_, err := svc.Analyze(context.Background(), "yandex", result.File.Name)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestAnalysisServiceProviders(t *testing.T) {
	svc, _ := newTestAnalysisService(t,
		&stubAnalyzer{name: ai.ProviderGigaChat},
		&stubAnalyzer{name: ai.ProviderYandex})

	assert.Equal(t, []string{"gigachat", "yandex"}, svc.Providers())
}
