package dataset

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"findash/internal/infrastructure"
	"findash/pkg/contracts/domain"
)

// Snapshot is one immutable load of the dataset.
type Snapshot struct {
	Table    *domain.Table
	Version  string
	Source   string
	LoadedAt time.Time
}

// ReloadFunc is notified after a reload produced a different dataset.
type ReloadFunc func(ctx context.Context, snap *Snapshot)

// Repository loads the dataset once and serves the same snapshot to every
// caller until Reload swaps it. A failed first load is retried on the
// next Get.
type Repository struct {
	source  Source
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
	now     func() time.Time

	group   singleflight.Group
	current atomic.Pointer[Snapshot]

	mu        sync.RWMutex
	listeners []ReloadFunc
}

// NewRepository creates a repository over source. metrics may be nil.
func NewRepository(source Source, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		source:  source,
		logger:  infrastructure.WithComponent(logger, "dataset"),
		metrics: metrics,
		now:     time.Now,
	}
}

// SourceName names the backing source.
func (r *Repository) SourceName() string { return r.source.Name() }

// Current returns the loaded snapshot, or nil before the first success.
func (r *Repository) Current() *Snapshot { return r.current.Load() }

// Get returns the current snapshot, loading it on first use. Concurrent
// first callers share one load, which is detached from the caller's
// cancellation so one caller leaving does not fail the others. A Reload
// that lands during the load wins.
func (r *Repository) Get(ctx context.Context) (*Snapshot, error) {
	if snap := r.current.Load(); snap != nil {
		return snap, nil
	}
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do("load", func() (interface{}, error) {
		if snap := r.current.Load(); snap != nil {
			return snap, nil
		}
		snap, err := r.load(loadCtx)
		if err != nil {
			return nil, err
		}
		r.current.CompareAndSwap(nil, snap)
		return r.current.Load(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Reload reads the source again. On success the new snapshot replaces the
// old one and listeners are told if the content changed; on failure the
// previous snapshot stays in place.
func (r *Repository) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, _ := r.group.Do("reload", func() (interface{}, error) {
		snap, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		prev := r.current.Swap(snap)
		if prev == nil || prev.Version != snap.Version {
			r.notify(ctx, snap)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// OnReload registers fn for changed reloads.
func (r *Repository) OnReload(fn ReloadFunc) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Repository) notify(ctx context.Context, snap *Snapshot) {
	r.mu.RLock()
	listeners := append([]ReloadFunc(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, snap)
	}
}

func (r *Repository) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	table, err := r.source.Load(ctx)
	duration := time.Since(start)

	if err != nil {
		infrastructure.RecordDatasetLoad(ctx, r.metrics, r.source.Name(), duration, 0, err)
		r.logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("source", r.source.Name()),
			slog.String("error", err.Error()))
		return nil, err
	}

	snap := &Snapshot{
		Table:    table,
		Version:  Fingerprint(table),
		Source:   r.source.Name(),
		LoadedAt: r.now(),
	}
	infrastructure.RecordDatasetLoad(ctx, r.metrics, snap.Source, duration, table.Len(), nil)
	r.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", snap.Source),
		slog.String("version", snap.Version),
		slog.Int("records", table.Len()),
		slog.Int("companies", len(table.Companies())),
		slog.Duration("duration", duration))
	return snap, nil
}
