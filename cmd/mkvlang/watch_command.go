package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mkvlang/internal/batch"
	"mkvlang/internal/logging"
	"mkvlang/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var settle time.Duration
	var initialScan bool

	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Relabel files as they are added under a folder",
		Long: "watch keeps running and relabels each new or changed file once it has been quiet\n" +
			"for the settle interval. Stop it with Ctrl-C. Watch mode never prompts: files with\n" +
			"several subtitle tracks are skipped.",
		Args: folderArgs("mkvlang watch"),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := checkFolder(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			// Nobody is at the terminal to answer a prompt.
			cfg.Processing.NonInteractive = true

			app, err := openBatchApp(cmd, ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			runCtx := app.runContext(cmd.Context())
			app.startRun(runCtx, root, "watch")

			var initial batch.Stats
			if initialScan {
				runner := batch.NewRunner(app.processor, app.cfg.Processing.Extensions, app.logger)
				if rec := app.recorder(); rec != nil {
					runner.WithRecorder(rec)
				}
				stats, err := runner.Run(runCtx, root)
				printSummary(cmd.OutOrStdout(), stats, app.dryRun)
				if err != nil {
					app.finishRun(runCtx, stats)
					return err
				}
				initial = stats
			}

			interval := settle
			if interval <= 0 {
				interval = time.Duration(app.cfg.Watch.SettleSeconds) * time.Second
			}
			w := watch.New(app.processor, app.cfg.Processing.Extensions, interval, app.logger)
			if rec := app.recorder(); rec != nil {
				w.WithRecorder(rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (settle %s); press Ctrl-C to stop\n", root, interval)
			stats, err := w.Run(runCtx, root)
			stats.Merge(initial)
			app.finishRun(runCtx, stats)
			printSummary(cmd.OutOrStdout(), stats, app.dryRun)
			if err != nil {
				logging.ErrorWithContext(app.logger, "watch failed", "watch_failed", logging.Error(err))
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 0, "Quiet period before a file is processed (default from config: watch.settle_seconds)")
	cmd.Flags().BoolVar(&initialScan, "scan", false, "Process files already in the folder before watching")
	return cmd
}
