package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"datasight/internal/ai"
	apperrors "datasight/internal/errors"
	"datasight/internal/infrastructure"
)

// AnalysisResult holds the commentary produced by an analysis provider.
type AnalysisResult struct {
	Provider   string
	Commentary string
	Elapsed    time.Duration
}

// AnalysisService requests free-text commentary about an uploaded table
// from one of the configured external providers.
type AnalysisService struct {
	registry *ai.Registry
	uploads  *UploadService
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service with injected dependencies.
func NewAnalysisService(registry *ai.Registry, uploads *UploadService, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		registry: registry,
		uploads:  uploads,
		logger:   logger,
	}
}

// Analyze sends the stored upload to the named provider and returns its
// commentary. Provider selection errors are mapped to service sentinels so
// handlers can distinguish a typo from missing credentials.
func (s *AnalysisService) Analyze(ctx context.Context, provider, upload string) (*AnalysisResult, error) {
	analyzer, err := s.registry.Get(provider)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			switch appErr.Type {
			case apperrors.ErrTypeValidation:
				return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
			case apperrors.ErrTypeConfig:
				return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, provider)
			}
		}
		return nil, err
	}

	table, err := s.uploads.Table(ctx, upload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "analysis started",
		slog.String("provider", analyzer.Name()),
		slog.String("file", upload))

	commentary, err := analyzer.Analyze(ctx, table)
	infrastructure.RecordAnalysis(ctx, analyzer.Name(), time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "analysis failed",
			slog.String("provider", analyzer.Name()),
			slog.String("file", upload),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("provider %s: %w", analyzer.Name(), err)
	}

	elapsed := time.Since(start)
	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("provider", analyzer.Name()),
		slog.String("file", upload),
		slog.Duration("elapsed", elapsed))

	return &AnalysisResult{
		Provider:   analyzer.Name(),
		Commentary: commentary,
		Elapsed:    elapsed,
	}, nil
}

// Providers lists the provider names that are configured and usable.
func (s *AnalysisService) Providers() []string {
	return s.registry.Providers()
}
