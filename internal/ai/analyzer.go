// Package ai produces free-text commentary on ingested tables through
// interchangeable language model providers.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"datasight/internal/config"
	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// Analyzer generates analytical commentary for a table.
type Analyzer interface {
	// Name returns the provider identifier used in API routes.
	Name() string
	// Analyze sends the table to the provider and returns its commentary.
	Analyze(ctx context.Context, table *dataset.Table) (string, error)
}

// Registry holds the configured analyzers keyed by provider name.
type Registry struct {
	analyzers map[string]Analyzer
}

// NewRegistry builds analyzers for every provider with credentials present.
// Providers without credentials are skipped so the rest of the service
// keeps working.
func NewRegistry(cfg config.AIConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}
	reg := &Registry{analyzers: make(map[string]Analyzer)}

	if cfg.Yandex.APIKey != "" && cfg.Yandex.FolderID != "" {
		reg.analyzers[ProviderYandex] = NewYandexAnalyzer(cfg, client, logger)
	} else {
		logger.Warn("yandex analyzer disabled, credentials missing")
	}

	if cfg.GigaChat.AuthKey != "" {
		reg.analyzers[ProviderGigaChat] = NewGigaChatAnalyzer(cfg, client, logger)
	} else {
		logger.Warn("gigachat analyzer disabled, credentials missing")
	}

	return reg
}

// Get returns the analyzer for the provider name.
func (r *Registry) Get(name string) (Analyzer, error) {
	switch name {
	case ProviderYandex, ProviderGigaChat:
	default:
		return nil, errors.NewAppValidationError(fmt.Sprintf("unknown analysis provider %q", name))
	}
	analyzer, ok := r.analyzers[name]
	if !ok {
		return nil, errors.NewConfigError(fmt.Sprintf("provider %q is not configured", name), nil)
	}
	return analyzer, nil
}

// Providers lists the names of configured analyzers in stable order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register replaces or adds an analyzer, used by tests.
func (r *Registry) Register(a Analyzer) {
	r.analyzers[a.Name()] = a
}

// Provider names accepted by the analysis API.
const (
	ProviderYandex   = "yandex"
	ProviderGigaChat = "gigachat"
)
