package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mkvlang/internal/batch"
	"mkvlang/internal/config"
	"mkvlang/internal/history"
	"mkvlang/internal/logging"
	"mkvlang/internal/mkvinfo"
	"mkvlang/internal/mkvmerge"
	"mkvlang/internal/preflight"
	"mkvlang/internal/prompt"
	"mkvlang/internal/runlock"
)

// batchApp holds everything a relabelling command needs for one invocation.
type batchApp struct {
	cfg       *config.Config
	logger    *slog.Logger
	processor *batch.Processor
	history   *history.Store
	lock      *runlock.Lock
	runID     string
	dryRun    bool
}

// openBatchApp checks the tools, takes the run lock (unless dry-run), opens
// the history journal, and wires the processor.
func openBatchApp(cmd *cobra.Command, ctx *commandContext) (*batchApp, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if err := preflight.RequireTools(cfg); err != nil {
		return nil, err
	}

	app := &batchApp{
		cfg:    cfg,
		logger: logger,
		runID:  batch.NewRunID(),
		dryRun: ctx.dryRun(),
	}

	if !app.dryRun {
		lock, err := runlock.Acquire(cfg.LockPath())
		if err != nil {
			return nil, err
		}
		app.lock = lock
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logging.WarnWithContext(logger, "history journal unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
				logging.String(logging.FieldErrorHint, "check [history] path or disable history in the config"),
			)
		} else {
			app.history = store
		}
	}

	var selector batch.Selector
	if cfg.Processing.NonInteractive {
		selector = prompt.DeclineSelector{Logger: logger}
	} else {
		selector = prompt.NewSelector(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	}

	app.processor = batch.NewProcessor(
		mkvinfo.NewProber(cfg.MkvinfoBinary(), logger),
		mkvmerge.NewMuxer(cfg.MkvmergeBinary(), logger),
		selector,
		batch.Options{
			Language:      cfg.Processing.Language,
			BackupSuffix:  cfg.Processing.BackupSuffix,
			SidecarSuffix: cfg.Processing.SidecarSuffix,
			KeepOriginal:  cfg.Processing.KeepOriginal,
			DryRun:        app.dryRun,
		},
		logger,
	)
	return app, nil
}

// context returns parent tagged with the invocation's run id.
func (a *batchApp) runContext(parent context.Context) context.Context {
	return logging.WithRunID(parent, a.runID)
}

// recorder returns the history store as a batch.Recorder, or nil.
func (a *batchApp) recorder() batch.Recorder {
	if a.history == nil {
		return nil
	}
	return a.history
}

func (a *batchApp) startRun(ctx context.Context, root, command string) {
	if a.history == nil {
		return
	}
	err := a.history.StartRun(ctx, history.Run{
		ID:       a.runID,
		Root:     root,
		Command:  command,
		Language: a.cfg.Processing.Language,
		DryRun:   a.dryRun,
	})
	if err != nil {
		logging.WarnWithContext(a.logger, "failed to record run start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		_ = a.history.Close()
		a.history = nil
	}
}

func (a *batchApp) finishRun(ctx context.Context, stats batch.Stats) {
	if a.history == nil {
		return
	}
	if err := a.history.FinishRun(context.WithoutCancel(ctx), stats); err != nil {
		logging.WarnWithContext(a.logger, "failed to record run summary", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows this run as unfinished"),
		)
	}
}

func (a *batchApp) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.lock != nil {
		errs = append(errs, a.lock.Release())
	}
	return errors.Join(errs...)
}
