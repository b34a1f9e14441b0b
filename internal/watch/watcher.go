// Package watch relabels files as they land in a folder tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"mkvlang/internal/batch"
	"mkvlang/internal/logging"
)

// Watcher feeds settled files under a root to a batch.FileProcessor one at a
// time. A file is settled once no Create or Write event has been seen for it
// for the settle interval; a Rename or Remove drops it from the queue. Events
// caused by the processor's own rewrite are suppressed.
type Watcher struct {
	processor  batch.FileProcessor
	recorder   batch.Recorder
	extensions map[string]struct{}
	settle     time.Duration
	tick       time.Duration
	logger     *slog.Logger
	now        func() time.Time
	ready      chan struct{}
}

// New constructs a watcher. A non-positive settle uses ten seconds.
func New(processor batch.FileProcessor, extensions []string, settle time.Duration, logger *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = 10 * time.Second
	}
	tick := settle / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > time.Second {
		tick = time.Second
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Watcher{
		processor:  processor,
		extensions: exts,
		settle:     settle,
		tick:       tick,
		logger:     logging.NewComponentLogger(logger, "watch"),
		now:        time.Now,
		ready:      make(chan struct{}),
	}
}

// WithRecorder attaches a journal for per-file results.
func (w *Watcher) WithRecorder(rec batch.Recorder) {
	if w != nil {
		w.recorder = rec
	}
}

// Ready is closed once every directory under the root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches root until ctx is cancelled. Cancellation is the normal way to
// stop and returns the accumulated stats with a nil error.
func (w *Watcher) Run(ctx context.Context, root string) (batch.Stats, error) {
	stats := batch.Stats{Root: root, StartedAt: w.now()}
	if id, ok := logging.RunIDFromContext(ctx); ok {
		stats.RunID = id
	} else {
		stats.RunID = batch.NewRunID()
		ctx = logging.WithRunID(ctx, stats.RunID)
	}
	logger := logging.WithContext(ctx, w.logger)

	info, err := os.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("folder does not exist: %s: %w", root, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("folder does not exist: %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return stats, fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	pending := make(map[string]time.Time)
	suppressed := make(map[string]time.Time)
	if err := w.addTree(fsw, logger, root, nil); err != nil {
		return stats, err
	}
	close(w.ready)
	logger.Info("watching folder",
		logging.String("root", root),
		logging.Duration("settle", w.settle),
	)

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stats.FinishedAt = w.now()
			logger.Info("watch stopped",
				logging.Int("patched", stats.Patched),
				logging.Int("unchanged", stats.Unchanged),
				logging.Int("declined", stats.Declined),
				logging.Int("failed", stats.Failed),
				logging.Int("pending", len(pending)),
			)
			return stats, nil

		case event, ok := <-fsw.Events:
			if !ok {
				return stats, errors.New("watcher event channel closed")
			}
			w.handleEvent(fsw, logger, event, pending, suppressed)

		case err, ok := <-fsw.Errors:
			if !ok {
				return stats, errors.New("watcher error channel closed")
			}
			logging.WarnWithContext(logger, "filesystem watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
			)

		case <-ticker.C:
			for _, path := range w.settled(pending) {
				delete(pending, path)
				if ctx.Err() != nil {
					break
				}
				if ok, _ := isRegular(path); !ok {
					logger.Debug("settled path vanished", logging.String(logging.FieldFile, path))
					continue
				}
				res, err := w.processor.ProcessFile(ctx, path)
				if err != nil {
					logging.ErrorWithContext(logging.WithContext(logging.WithFile(ctx, path), w.logger), "file failed", "file_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "see earlier log lines for this file; watching continues"),
					)
				}
				stats.Discovered++
				stats.Add(res)
				suppressed[path] = w.now().Add(w.settle)
				if w.recorder != nil {
					if recErr := w.recorder.RecordFile(context.WithoutCancel(ctx), stats.RunID, res); recErr != nil {
						logging.WarnWithContext(logger, "failed to record file outcome", "history_write_failed",
							logging.Error(recErr),
							logging.String(logging.FieldImpact, "history will miss this file"),
						)
					}
				}
			}
			now := w.now()
			for path, until := range suppressed {
				if now.After(until) {
					delete(suppressed, path)
				}
			}
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, logger *slog.Logger, event fsnotify.Event, pending, suppressed map[string]time.Time) {
	// The new name of a rename arrives as its own Create event.
	if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
		if _, ok := pending[event.Name]; ok {
			delete(pending, event.Name)
			logger.Debug("queued file moved away", logging.String(logging.FieldFile, event.Name))
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, logger, event.Name, pending); err != nil {
				logging.WarnWithContext(logger, "failed to watch new directory", "watch_add_failed",
					logging.Error(err),
					logging.String("dir", event.Name),
					logging.String(logging.FieldImpact, "files in this directory will not be relabelled"),
				)
			}
			return
		}
	}
	if !w.matches(event.Name) {
		return
	}
	if until, ok := suppressed[event.Name]; ok && w.now().Before(until) {
		return
	}
	if _, seen := pending[event.Name]; !seen {
		logger.Debug("file queued", logging.String(logging.FieldFile, event.Name))
	}
	pending[event.Name] = w.now()
}

// addTree watches dir and every directory below it. When pending is non-nil,
// matching files already present are queued, which covers folders moved in
// whole. Subdirectories that cannot be read or watched are logged and
// skipped; only a failure on dir itself is returned.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, logger *slog.Logger, dir string, pending map[string]time.Time) error {
	return batch.WalkTree(dir, logger, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				if path == dir {
					return fmt.Errorf("watch %s: %w", path, err)
				}
				logging.WarnWithContext(logger, "failed to watch directory", "watch_add_failed",
					logging.Error(err),
					logging.String("dir", path),
					logging.String(logging.FieldImpact, "files in this directory will not be relabelled"),
				)
				return fs.SkipDir
			}
			return nil
		}
		if pending != nil && d.Type().IsRegular() && w.matches(path) {
			pending[path] = w.now()
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (w *Watcher) settled(pending map[string]time.Time) []string {
	now := w.now()
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func isRegular(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
