// Package watch refreshes the document store when the file source changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// DefaultDebounce collapses bursts of editor writes into one refresh.
const DefaultDebounce = 250 * time.Millisecond

// Target describes which filesystem paths feed the document source.
type Target interface {
	WatchDirs() ([]string, error)
	Matches(path string) bool
}

// Refresher reloads the collection.
type Refresher interface {
	Refresh(ctx context.Context) store.Report
}

// Watcher triggers Refresh after changes to files matched by the target.
type Watcher struct {
	target    Target
	refresher Refresher
	debounce  time.Duration
	logger    *zap.Logger
	fsw       *fsnotify.Watcher
	// refreshed receives one value per completed refresh; nil outside tests.
	refreshed chan<- store.Report
}

// New creates a watcher and registers the target directories.
func New(target Target, refresher Refresher, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dirs, err := target.WatchDirs()
	if err != nil {
		return nil, fmt.Errorf("resolve watch dirs: %w", err)
	}
	if len(dirs) == 0 {
		return nil, errors.New("no directories to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}

	return &Watcher{
		target:    target,
		refresher: refresher,
		debounce:  debounce,
		logger:    logger.Named("watch"),
		fsw:       fsw,
	}, nil
}

// Dirs returns the directories currently watched.
func (w *Watcher) Dirs() []string {
	return w.fsw.WatchList()
}

// Run processes events until ctx is canceled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timerC:
			timerC = nil
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.logger.Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
			return false
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	return w.target.Matches(ev.Name)
}

func (w *Watcher) refresh(ctx context.Context) {
	report := w.refresher.Refresh(ctx)
	if report.OK() {
		w.logger.Info("documents refreshed after change",
			zap.String("snapshot_id", report.SnapshotID),
			zap.Int("documents", report.Documents),
		)
	}
	if w.refreshed != nil {
		w.refreshed <- report
	}
}
