package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mkvlang/internal/fileutil"
	"mkvlang/internal/logging"
	"mkvlang/internal/mkvinfo"
	"mkvlang/internal/mkvmerge"
)

// Prober inspects a container's tracks.
type Prober interface {
	Probe(ctx context.Context, path string) (mkvinfo.MediaInfo, error)
}

// Muxer rewrites a container.
type Muxer interface {
	Remux(ctx context.Context, req mkvmerge.Request) error
	CommandLine(req mkvmerge.Request) string
}

// Options controls how files are rewritten.
type Options struct {
	Language      string // ISO 639-2 code stamped onto undetermined tracks
	BackupSuffix  string
	SidecarSuffix string
	KeepOriginal  bool
	DryRun        bool
}

// Processor handles a single file from probe to rewrite.
type Processor struct {
	prober   Prober
	muxer    Muxer
	selector Selector
	opts     Options
	logger   *slog.Logger
}

// NewProcessor wires a processor. A nil selector declines every multi-subtitle file.
func NewProcessor(prober Prober, muxer Muxer, selector Selector, opts Options, logger *slog.Logger) *Processor {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = ".original"
	}
	return &Processor{
		prober:   prober,
		muxer:    muxer,
		selector: selector,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Options returns the processor's effective options.
func (p *Processor) Options() Options {
	return p.opts
}

// ProcessFile probes, decides, and rewrites path. Declined and unchanged files
// return a nil error; failures return both a failed Result and the cause.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ctx = logging.WithFile(ctx, path)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("processing file")

	res, err := p.process(ctx, logger, path)
	res.Path = path
	res.Duration = time.Since(start)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
	}
	return res, err
}

func (p *Processor) process(ctx context.Context, logger *slog.Logger, path string) (Result, error) {
	info, err := p.prober.Probe(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", path, err)
	}

	plan, err := Decide(ctx, info, p.selector, logger)
	if err != nil {
		if errors.Is(err, ErrDeclined) {
			logger.Info("file skipped", logging.String("outcome", string(OutcomeDeclined)))
			return Result{Outcome: OutcomeDeclined, Reason: "subtitle selection declined"}, nil
		}
		if ctx.Err() != nil {
			logger.Info("file skipped", logging.String("outcome", string(OutcomeDeclined)), logging.String("reason", "interrupted"))
			return Result{Outcome: OutcomeDeclined, Reason: "interrupted during subtitle selection"}, nil
		}
		return Result{}, fmt.Errorf("select subtitle: %w", err)
	}
	if !plan.NeedsRewrite() {
		logger.Info("nothing to do", logging.String("outcome", string(OutcomeUnchanged)))
		return Result{Outcome: OutcomeUnchanged, Reason: "no undetermined tracks to relabel"}, nil
	}

	directives := plan.Directives(p.opts.Language)
	backup := fileutil.BackupPath(path, p.opts.BackupSuffix)
	req := mkvmerge.Request{Input: backup, Output: path, Directives: directives}

	if p.opts.DryRun {
		logger.Info("dry run: would rewrite file",
			logging.String("command", p.muxer.CommandLine(req)),
			logging.String("outcome", string(OutcomeDryRun)),
		)
		return Result{Outcome: OutcomeDryRun, Directives: directives, Reason: "dry run"}, nil
	}

	return p.rewrite(ctx, logger, path, plan, req)
}

// rewrite performs original -> backup, mkvmerge -> original, then cleanup.
// Once the original has been renamed the remux runs to completion even if ctx
// is cancelled, so an interrupt never strands a half-written file.
func (p *Processor) rewrite(ctx context.Context, logger *slog.Logger, path string, plan Plan, req mkvmerge.Request) (Result, error) {
	res := Result{Directives: req.Directives}
	backup := req.Input

	exists, err := fileutil.Exists(backup)
	if err != nil {
		return res, fmt.Errorf("check backup: %w", err)
	}
	if exists {
		logging.WarnWithContext(logger, "backup already exists; refusing to rewrite", "backup_exists",
			logging.String("backup_path", backup),
			logging.String(logging.FieldErrorHint, "run mkvlang recover or remove the stale backup"),
		)
		res.BackupPath = backup
		return res, fmt.Errorf("%s: %w", backup, ErrBackupExists)
	}

	if err := fileutil.RenameNoReplace(path, backup); err != nil {
		return res, fmt.Errorf("back up original: %w", err)
	}
	res.BackupPath = backup

	for _, d := range req.Directives {
		logger.Info("setting track language",
			logging.Int("track_number", d.TrackNumber),
			logging.String("language", d.Language),
		)
	}

	if err := p.muxer.Remux(context.WithoutCancel(ctx), req); err != nil {
		if removed, rmErr := fileutil.RemoveIfExists(path); rmErr != nil {
			logger.Warn("failed to remove partial output", logging.Error(rmErr))
		} else if removed {
			logger.Debug("removed partial output")
		}
		logging.ErrorWithContext(logger, "rewrite failed; original preserved as backup", "rewrite_failed",
			logging.Error(err),
			logging.String("backup_path", backup),
			logging.String(logging.FieldErrorHint, "fix the cause, then run mkvlang recover on the folder"),
		)
		return res, fmt.Errorf("remux %s: %w", path, err)
	}

	if ok, err := fileutil.Exists(path); err != nil || !ok {
		logging.ErrorWithContext(logger, "rewrite produced no file; original preserved as backup", "rewrite_failed",
			logging.String("backup_path", backup),
			logging.String(logging.FieldErrorHint, "run mkvlang recover on the folder"),
		)
		if err != nil {
			return res, fmt.Errorf("check output: %w", err)
		}
		return res, fmt.Errorf("%s: %w", path, ErrNoOutput)
	}

	if plan.Subtitle != nil {
		sidecar := fileutil.SidecarPath(path, p.opts.SidecarSuffix)
		removed, err := fileutil.RemoveIfExists(sidecar)
		if err != nil {
			logging.WarnWithContext(logger, "failed to remove subtitle side-file", "sidecar_removal_failed",
				logging.Error(err),
				logging.String("sidecar", sidecar),
				logging.String(logging.FieldImpact, "stale side-file left next to the rewritten file"),
			)
		} else if removed {
			res.SidecarRemoved = true
			logger.Info("removed subtitle side-file", logging.String("sidecar", sidecar))
		}
	}

	if p.opts.KeepOriginal {
		logger.Info("original kept", logging.String("backup_path", backup))
	} else {
		if err := os.Remove(backup); err != nil {
			logging.WarnWithContext(logger, "failed to remove backup", "backup_removal_failed",
				logging.Error(err),
				logging.String("backup_path", backup),
				logging.String(logging.FieldImpact, "backup remains on disk"),
			)
		} else {
			res.BackupPath = ""
			logger.Debug("removed original backup")
		}
	}

	res.Outcome = OutcomePatched
	logger.Info("finished processing file",
		logging.String("outcome", string(OutcomePatched)),
		logging.Int("directives", len(req.Directives)),
	)
	return res, nil
}
