package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"findash/internal/infrastructure"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the repository when the workbook changes on disk.
type Watcher struct {
	repo     *Repository
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher watches path. The parent directory is observed so that
// editors replacing the file atomically are still seen.
func NewWatcher(repo *Repository, path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		repo:     repo,
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger.With(slog.String("component", "dataset_watcher")),
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.InfoContext(ctx, "Watching dataset", slog.String("path", w.path))

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				w.reload(ctx)
			})
			mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "Watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	snap, err := w.repo.Reload(ctx)
	if err != nil {
		// previous snapshot keeps serving
		w.logger.WarnContext(ctx, "Reload after change failed", slog.String("error", err.Error()))
		return
	}
	w.logger.InfoContext(ctx, "Dataset reloaded after change",
		slog.String("path", w.path),
		slog.String("version", snap.Version))
}
