package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/dataset"
	"findash/internal/services"
	"findash/pkg/contracts"
	"findash/pkg/contracts/domain"
)

type stubSnapshots struct {
	snap *dataset.Snapshot
	err  error
}

func (s *stubSnapshots) Current() *dataset.Snapshot { return s.snap }

func (s *stubSnapshots) Get(ctx context.Context) (*dataset.Snapshot, error) {
	return s.snap, s.err
}

func (s *stubSnapshots) SourceName() string { return "stub" }

func newHealthRouter(data services.SnapshotProvider) http.Handler {
	h := NewHealthHandler(services.NewHealthService(data, nil, testLogger()), testLogger())
	r := chi.NewRouter()
	r.Get("/api/health", h.HealthCheck)
	r.Get("/api/health/ready", h.ReadinessCheck)
	r.Get("/api/health/live", h.LivenessCheck)
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	table, err := domain.NewTable([]domain.FinancialRecord{domain.NewRecord("Walmart", 2023)}, []domain.Column{domain.ColRevenue})
	require.NoError(t, err)
	loaded := &stubSnapshots{snap: &dataset.Snapshot{Table: table, Version: "v1", Source: "stub", LoadedAt: time.Now()}}
	missing := &stubSnapshots{err: errors.New("workbook not found")}

	tests := []struct {
		name   string
		data   services.SnapshotProvider
		path   string
		status int
		want   string
	}{
		{"health", missing, "/api/health", http.StatusOK, "ok"},
		{"live", missing, "/api/health/live", http.StatusOK, "alive"},
		{"ready", loaded, "/api/health/ready", http.StatusOK, "ready"},
		{"not ready", missing, "/api/health/ready", http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newHealthRouter(tt.data), http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, decodeBody(t, rec)["status"])
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec := serve(newHealthRouter(&stubSnapshots{}), http.MethodGet, "/api/version", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, contracts.Version, body["version"])
	assert.Equal(t, contracts.APIVersion, body["api_version"])
}
