package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"datasight/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     config.PathsConfig
	uploads   *UploadService
	reports   *ReportService
	analysis  *AnalysisService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, paths config.PathsConfig, uploads *UploadService, reports *ReportService, analysis *AnalysisService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		uploads:   uploads,
		reports:   reports,
		analysis:  analysis,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns aggregate health: storage directories must be writable and
// at least observable, providers are reported informationally. Status is
// "degraded" rather than "unhealthy" when only a subsystem fails, so load
// balancers keep routing while an operator investigates.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	status.Services["uploads"] = s.checkDir(s.paths.UploadsDir)
	status.Services["reports"] = s.checkDir(s.paths.ReportsDir)

	providers := s.analysis.Providers()
	if len(providers) == 0 {
		status.Services["analysis"] = ServiceHealth{
			Status:  "unavailable",
			Message: "no analysis providers configured",
		}
	} else {
		status.Services["analysis"] = map[string]interface{}{
			"status":    "healthy",
			"providers": providers,
		}
	}

	for _, svc := range []string{"uploads", "reports"} {
		if health, ok := status.Services[svc].(ServiceHealth); ok && health.Status != "healthy" {
			status.Status = "degraded"
		}
	}
	return status
}

// checkDir verifies a storage directory exists and is a directory.
func (s *HealthService) checkDir(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: "unhealthy", Message: err.Error()}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "unhealthy", Message: dir + " is not a directory"}
	}
	return ServiceHealth{Status: "healthy"}
}
