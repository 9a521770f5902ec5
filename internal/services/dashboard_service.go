package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"findash/internal/categories"
	"findash/internal/config"
	"findash/internal/dashboard"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
	"findash/internal/exporter"
	"findash/internal/infrastructure"
	"findash/internal/validation"
	"findash/pkg/contracts/domain"
)

// Dataset is the read side of dataset.Repository.
type Dataset interface {
	Get(ctx context.Context) (*dataset.Snapshot, error)
	SourceName() string
}

// SelectionRequest is the raw, unvalidated user choice. Zero values mean
// "use the default".
type SelectionRequest struct {
	Unit         string   `json:"unit" validate:"omitempty,oneof=billions millions"`
	Category     string   `json:"category" validate:"omitempty,max=100"`
	Companies    []string `json:"companies" validate:"max=50,dive,company"`
	CompaniesSet bool     `json:"companies_set"`
	Year         int      `json:"year" validate:"gte=0,lte=9999"`
	Trend        *bool    `json:"trend"`
}

// Explicit reports whether the user made a company choice, even an empty one.
func (r SelectionRequest) Explicit() bool { return r.CompaniesSet || len(r.Companies) > 0 }

// Resolved is a validated selection bound to the snapshot it was resolved on.
type Resolved struct {
	Selection domain.Selection
	Choice    categories.Choice
	Snapshot  *dataset.Snapshot
}

// DashboardResult is one render pass and the dataset version it used.
type DashboardResult struct {
	Dashboard *dashboard.Dashboard
	Version   string
}

// CategoryInfo describes one menu entry.
type CategoryInfo struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Custom bool   `json:"custom,omitempty"`
}

// DatasetInfo describes the loaded snapshot.
type DatasetInfo struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  int       `json:"records"`
}

// Meta is everything a client needs to draw the controls.
type Meta struct {
	Units           []domain.Unit      `json:"units"`
	Categories      []CategoryInfo     `json:"categories"`
	DefaultCategory string             `json:"default_category"`
	Years           []int              `json:"years"`
	DefaultYear     int                `json:"default_year"`
	Companies       []string           `json:"companies"`
	Columns         []domain.Column    `json:"columns"`
	Views           []dashboard.ViewID `json:"views"`
	Dataset         DatasetInfo        `json:"dataset"`
}

// DashboardOptions are the render defaults from configuration.
type DashboardOptions struct {
	Render      dashboard.Options
	DefaultUnit domain.Unit
	ShowTrend   bool
}

// DashboardOptionsFrom maps configuration to service options.
func DashboardOptionsFrom(dash config.DashboardConfig, export config.ExportConfig) DashboardOptions {
	opts := DashboardOptions{
		Render:    dashboard.DefaultOptions(),
		ShowTrend: dash.ShowTrend,
	}
	opts.DefaultUnit, _ = domain.ParseUnit(dash.DefaultUnit)
	if opts.DefaultUnit == "" {
		opts.DefaultUnit = domain.UnitBillions
	}
	if dash.TrendLookback > 0 {
		opts.Render.Lookback = dash.TrendLookback
	}
	opts.Render.DivideDefault = dash.DivideDefault
	if export.ChartWidth > 0 {
		opts.Render.ChartWidth = export.ChartWidth
	}
	if export.ChartHeight > 0 {
		opts.Render.ChartHeight = export.ChartHeight
	}
	return opts
}

// DashboardService answers meta, option, render and export requests.
type DashboardService struct {
	data      Dataset
	taxonomy  *categories.Taxonomy
	exporter  *exporter.Exporter
	validator *validation.Validator
	opts      DashboardOptions
	metrics   *infrastructure.DashboardMetrics
	logger    *slog.Logger
}

// NewDashboardService creates the service. metrics may be nil.
func NewDashboardService(data Dataset, taxonomy *categories.Taxonomy, exp *exporter.Exporter, opts DashboardOptions, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if exp == nil {
		exp = exporter.New(logger)
	}
	if opts.DefaultUnit == "" {
		opts.DefaultUnit = domain.UnitBillions
	}

	logger.Info("DashboardService initialized",
		slog.String("source", data.SourceName()),
		slog.Int("categories", len(taxonomy.Groups())),
		slog.Int("trend_lookback", opts.Render.Lookback))

	return &DashboardService{
		data:      data,
		taxonomy:  taxonomy,
		exporter:  exp,
		validator: validation.New(),
		opts:      opts,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Meta lists the controls' choices for the current dataset.
func (s *DashboardService) Meta(ctx context.Context) (*Meta, error) {
	snap, err := s.data.Get(ctx)
	if err != nil {
		return nil, err
	}

	meta := &Meta{
		Units:           domain.Units,
		DefaultCategory: s.taxonomy.DefaultID(),
		Years:           snap.Table.Years(),
		Companies:       snap.Table.Companies(),
		Columns:         snap.Table.Columns(),
		Views:           dashboard.Views,
		Dataset: DatasetInfo{
			Version:  snap.Version,
			Source:   snap.Source,
			LoadedAt: snap.LoadedAt,
			Records:  snap.Table.Len(),
		},
	}
	meta.DefaultYear, _ = snap.Table.LatestYear()
	for _, g := range s.taxonomy.Groups() {
		meta.Categories = append(meta.Categories, CategoryInfo{ID: g.ID, Label: g.Label, Custom: g.Custom})
	}
	return meta, nil
}

// Options returns the company choice of a category. An empty category
// means the first one.
func (s *DashboardService) Options(ctx context.Context, category string) (categories.Choice, error) {
	snap, err := s.data.Get(ctx)
	if err != nil {
		return categories.Choice{}, err
	}
	if category == "" {
		category = s.taxonomy.DefaultID()
	}
	return s.taxonomy.Options(category, snap.Table.Companies())
}

// Resolve validates req and fills its defaults from the dataset.
func (s *DashboardService) Resolve(ctx context.Context, req SelectionRequest) (*Resolved, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	snap, err := s.data.Get(ctx)
	if err != nil {
		return nil, err
	}

	unit := s.opts.DefaultUnit
	if req.Unit != "" {
		unit = domain.Unit(req.Unit)
	}

	category := req.Category
	if category == "" {
		category = s.taxonomy.DefaultID()
	}
	choice, err := s.taxonomy.Options(category, snap.Table.Companies())
	if err != nil {
		return nil, err
	}

	year := req.Year
	if year == 0 {
		year, _ = snap.Table.LatestYear()
	}

	trend := s.opts.ShowTrend
	if req.Trend != nil {
		trend = *req.Trend
	}

	return &Resolved{
		Selection: domain.Selection{
			Unit:      unit,
			Category:  choice.Category,
			Companies: choice.Resolve(req.Companies, req.Explicit()),
			Year:      year,
			ShowTrend: trend,
		},
		Choice:   choice,
		Snapshot: snap,
	}, nil
}

// Build runs one render pass for req.
func (s *DashboardService) Build(ctx context.Context, req SelectionRequest) (*DashboardResult, error) {
	res, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := dashboard.Build(res.Selection, res.Snapshot.Table, res.Choice.Label, s.opts.Render)
	infrastructure.RecordRender(ctx, s.metrics, res.Selection.Category, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Dashboard render failed",
			slog.String("category", res.Selection.Category),
			slog.String("error", err.Error()))
		return nil, apierrors.NewRenderError("dashboard render failed", err).
			WithContext("category", res.Selection.Category)
	}

	s.logger.DebugContext(ctx, "Dashboard rendered",
		slog.String("category", res.Selection.Category),
		slog.Int("companies", len(res.Selection.Companies)),
		slog.Int("year", res.Selection.Year),
		slog.Duration("duration", time.Since(start)))

	return &DashboardResult{Dashboard: d, Version: res.Snapshot.Version}, nil
}

// Export renders req and writes one view to w.
func (s *DashboardService) Export(ctx context.Context, w io.Writer, req SelectionRequest, view dashboard.ViewID, format exporter.Format) error {
	result, err := s.Build(ctx, req)
	if err != nil {
		return err
	}
	err = s.exporter.Export(ctx, w, result.Dashboard, view, format)
	infrastructure.RecordExport(ctx, s.metrics, string(view), string(format), err)
	return err
}

// ExportFile renders req and saves one view under the exports directory.
// An empty name uses the view's default file name.
func (s *DashboardService) ExportFile(ctx context.Context, paths *config.Paths, name string, req SelectionRequest, view dashboard.ViewID, format exporter.Format) (string, error) {
	result, err := s.Build(ctx, req)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = view.ExportName(string(format))
	}
	path, err := s.exporter.ExportFile(ctx, paths, name, result.Dashboard, view, format)
	infrastructure.RecordExport(ctx, s.metrics, string(view), string(format), err)
	if err == nil {
		s.logger.InfoContext(ctx, "Export written", slog.String("path", path))
	}
	return path, err
}
