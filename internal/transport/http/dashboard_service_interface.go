package http

import (
	"context"
	"io"

	"findash/internal/categories"
	"findash/internal/dashboard"
	"findash/internal/exporter"
	"findash/internal/services"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Meta(ctx context.Context) (*services.Meta, error)
	Options(ctx context.Context, category string) (categories.Choice, error)
	Build(ctx context.Context, req services.SelectionRequest) (*services.DashboardResult, error)
	Export(ctx context.Context, w io.Writer, req services.SelectionRequest, view dashboard.ViewID, format exporter.Format) error
}
