// Package watcher observes a local resource directory and nudges the daemon
// when new dataset files land, so a mirrored directory is picked up without
// waiting for the next scheduled reconcile.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceWindow = 5 * time.Second

// Watcher debounces filesystem events on a resource directory into trigger
// callbacks.
type Watcher struct {
	dir     string
	trigger func()
	logger  *zap.Logger
}

// New creates a watcher over dir. trigger is called at most once per
// debounce window, after the directory has settled.
func New(dir string, trigger func(), logger *zap.Logger) *Watcher {
	return &Watcher{dir: dir, trigger: trigger, logger: logger}
}

// Run blocks until ctx is cancelled. Watch errors are logged, not fatal: a
// dropped inotify watch degrades to schedule-only reconciles.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("Watching resource directory", zap.String("dir", w.dir))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Resource directory changed",
				zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if debounce == nil {
				debounce = time.AfterFunc(debounceWindow, func() { w.trigger() })
			} else {
				debounce.Reset(debounceWindow)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Resource watch error", zap.Error(err))
		}
	}
}

// relevant filters for newly written dataset files; temp files and deletions
// never warrant a reconcile.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.HasSuffix(name, ".grib2") ||
		strings.HasSuffix(name, ".grb2") ||
		strings.HasSuffix(name, ".grib2.bz2")
}
