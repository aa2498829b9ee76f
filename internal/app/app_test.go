package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/config"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.UploadsDir = t.TempDir()
	cfg.Paths.ReportsDir = t.TempDir()
	cfg.Paths.LogsDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false

	app := &Application{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()
	return app
}

func TestApplicationRoutes(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, "/api/health/", http.StatusOK},
		{"version", http.MethodGet, "/api/health/version", http.StatusOK},
		{"uploads list", http.MethodGet, "/api/uploads", http.StatusOK},
		{"reports list", http.MethodGet, "/api/reports/", http.StatusOK},
		{"providers", http.MethodGet, "/api/analysis/providers", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestApplicationSecurityHeaders(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health/", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplicationServerConfig(t *testing.T) {
	app := newTestApplication(t)

	require.NotNil(t, app.Server)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
}
