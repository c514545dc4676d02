package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"finextract/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	info      contracts.VersionInfo
	startTime time.Time
	// ready reports whether the extraction service can accept work.
	ready  func() bool
	logger *slog.Logger
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
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. A nil ready func always reports
// the extractor as ready.
func NewHealthService(info contracts.VersionInfo, ready func() bool, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if ready == nil {
		ready = func() bool { return true }
	}

	logger.Info("HealthService initialized",
		slog.String("version", info.Version),
		slog.String("build_time", info.BuildTime),
		slog.String("git_commit", info.GitCommit))

	return &HealthService{
		info:      info,
		startTime: time.Now(),
		ready:     ready,
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.info.Version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.info.Version,
		Services:  make(map[string]interface{}),
	}

	extractor := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).Round(time.Second).String(),
	}
	if !hs.ready() {
		extractor.Status = "not_ready"
		extractor.Message = "extraction service is not initialized"
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "ReadinessCheck: extractor not ready")
	}
	status.Services["extractor"] = extractor

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.info.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.info.Version,
		"api_version":  hs.info.APIVersion,
		"data_format":  hs.info.DataFormat,
		"build_time":   hs.info.BuildTime,
		"git_commit":   hs.info.GitCommit,
		"go_version":   hs.info.GoVersion,
		"os":           hs.info.OS,
		"arch":         hs.info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}
