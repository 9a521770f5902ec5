package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"findash/internal/dataset"
	"findash/pkg/contracts"
)

// SnapshotProvider exposes the currently loaded snapshot, if any.
type SnapshotProvider interface {
	Current() *dataset.Snapshot
	Get(ctx context.Context) (*dataset.Snapshot, error)
	SourceName() string
}

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	data      SnapshotProvider
	hub       ClientCounter
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
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. hub may be nil.
func NewHealthService(data SnapshotProvider, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", contracts.Version),
		slog.String("source", data.SourceName()))

	return &HealthService{
		version:   contracts.Version,
		data:      data,
		hub:       hub,
		startTime: time.Now(),
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
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the dataset loads. It triggers the
// first load when nothing has been loaded yet.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data":      hs.checkDataHealth(ctx),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      info.Version,
		"api_version":  contracts.APIVersion,
		"data_format":  contracts.DataFormatVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if info.BuildTime != "" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "" {
		result["git_commit"] = info.GitCommit
	}
	return result
}

func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	snap := hs.data.Current()
	if snap == nil {
		var err error
		if snap, err = hs.data.Get(ctx); err != nil {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("Dataset not loaded: %v", err),
			}
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d records from %s (version %s)", snap.Table.Len(), snap.Source, snap.Version),
		Uptime:  time.Since(snap.LoadedAt).Round(time.Second).String(),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket notifications disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
