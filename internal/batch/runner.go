package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mkvlang/internal/logging"
)

// FileProcessor handles a single file. *Processor satisfies it.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (Result, error)
}

// Recorder receives each file result of a run, e.g. to journal it.
type Recorder interface {
	RecordFile(ctx context.Context, runID string, res Result) error
}

// Runner drives a Processor over every matching file under a folder.
type Runner struct {
	processor  FileProcessor
	extensions []string
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner constructs a runner scanning for the given extensions.
func NewRunner(processor FileProcessor, extensions []string, logger *slog.Logger) *Runner {
	return &Runner{
		processor:  processor,
		extensions: append([]string(nil), extensions...),
		logger:     logging.NewComponentLogger(logger, "batch"),
		now:        time.Now,
	}
}

// WithRecorder attaches a journal for per-file results.
func (r *Runner) WithRecorder(rec Recorder) {
	if r != nil {
		r.recorder = rec
	}
}

// NewRunID returns a fresh run correlation identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run processes every file under root sequentially. The context is checked
// between files only; a cancelled run returns the partial stats together with
// the context error. A missing or non-directory root is returned as an error
// before anything is processed.
func (r *Runner) Run(ctx context.Context, root string) (Stats, error) {
	stats := Stats{Root: root, StartedAt: r.now()}
	if id, ok := logging.RunIDFromContext(ctx); ok {
		stats.RunID = id
	} else {
		stats.RunID = NewRunID()
		ctx = logging.WithRunID(ctx, stats.RunID)
	}
	logger := logging.WithContext(ctx, r.logger)

	files, err := Discover(root, r.extensions, logger)
	if err != nil {
		return stats, err
	}
	stats.Discovered = len(files)
	logger.Info("processing folder",
		logging.String("root", root),
		logging.Int("files", len(files)),
	)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			stats.Interrupted = true
			stats.FinishedAt = r.now()
			logger.Warn("run interrupted",
				logging.Int("remaining", stats.Discovered-stats.Processed()),
				logging.String(logging.FieldEventType, "run_interrupted"),
			)
			return stats, err
		}

		res, err := r.processor.ProcessFile(ctx, path)
		if err != nil {
			logging.ErrorWithContext(logging.WithContext(logging.WithFile(ctx, path), r.logger), "file failed", "file_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "see earlier log lines for this file; the batch continues"),
			)
		}
		stats.Add(res)
		if r.recorder != nil {
			if recErr := r.recorder.RecordFile(context.WithoutCancel(ctx), stats.RunID, res); recErr != nil {
				logging.WarnWithContext(logger, "failed to record file outcome", "history_write_failed",
					logging.Error(recErr),
					logging.String(logging.FieldImpact, "history will miss this file"),
				)
			}
		}
	}

	stats.FinishedAt = r.now()
	logger.Info("folder processed",
		logging.Int("patched", stats.Patched),
		logging.Int("unchanged", stats.Unchanged),
		logging.Int("declined", stats.Declined),
		logging.Int("failed", stats.Failed),
		logging.Int("dry_run", stats.DryRun),
		logging.Duration("elapsed", stats.FinishedAt.Sub(stats.StartedAt)),
	)
	return stats, nil
}
