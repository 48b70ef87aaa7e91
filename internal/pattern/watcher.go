package pattern

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reindexDebounce = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the corpus root and triggers a
// debounced full reindex whenever snippet files change, until ctx is
// cancelled. New directories created at runtime are added to the watch list.
func Watch(ctx context.Context, engine *Engine, root string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("corpus watcher started", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reindexDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reindexDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("corpus watcher stopped")
			return nil

		case <-timerCh:
			if _, err := engine.Index(ctx, false); err != nil {
				logger.Warn("watcher reindex failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watch new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}
			ext := filepath.Ext(ev.Name)
			if ext != ".ts" && ext != ".js" {
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("corpus watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all nested directories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
