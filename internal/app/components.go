package app

import (
	"context"
	"fmt"
	"log/slog"

	"findash/internal/categories"
	"findash/internal/config"
	"findash/internal/dataset"
	"findash/internal/exporter"
	"findash/internal/infrastructure"
	"findash/internal/services"
)

// Components is the service graph shared by the server and the CLI.
type Components struct {
	Taxonomy  *categories.Taxonomy
	Dataset   *dataset.Repository
	Exporter  *exporter.Exporter
	Dashboard *services.DashboardService
}

// BuildComponents creates the taxonomy, the dataset repository, the
// exporter and the dashboard service described by cfg. metrics may be nil.
func BuildComponents(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) (*Components, error) {
	taxonomy := categories.Default()
	if paths.TaxonomyFile != "" {
		loaded, err := categories.Load(paths.TaxonomyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load category taxonomy: %w", err)
		}
		taxonomy = loaded
		logger.Info("Category taxonomy loaded", slog.String("path", paths.TaxonomyFile))
	}
	taxonomy = taxonomy.WithCustomDefault(cfg.Dashboard.CustomDefaultCount)

	source, err := dataset.NewSource(ctx, cfg.Data, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}
	repo := dataset.NewRepository(source, logger, metrics)

	exp := exporter.New(logger)

	return &Components{
		Taxonomy: taxonomy,
		Dataset:  repo,
		Exporter: exp,
		Dashboard: services.NewDashboardService(
			repo,
			taxonomy,
			exp,
			services.DashboardOptionsFrom(cfg.Dashboard, cfg.Export),
			metrics,
			logger,
		),
	}, nil
}
