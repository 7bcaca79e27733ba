package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"metricqa/internal/catalog"
	"metricqa/internal/infrastructure"
)

// HealthService reports process and dependency health
type HealthService struct {
	version   string
	catalog   catalog.Source
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// NewHealthService creates a new health service
func NewHealthService(version string, src catalog.Source, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = infrastructure.NopLogger()
	}
	return &HealthService{
		version:   version,
		catalog:   src,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Check reports overall health. The service is degraded when the metric
// catalog cannot be loaded, since no validation can run without it.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Services: make(map[string]ServiceHealth),
	}

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Catalog health check failed", slog.String("error", err.Error()))
		status.Status = StatusDegraded
		status.Services["catalog"] = ServiceHealth{Status: StatusDegraded, Message: err.Error()}
		return status
	}

	status.Services["catalog"] = ServiceHealth{Status: StatusHealthy}
	if cat.Len() == 0 {
		status.Services["catalog"] = ServiceHealth{Status: StatusHealthy, Message: "catalog is empty"}
	}
	return status
}
