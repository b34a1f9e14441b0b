package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mkvlang/internal/batch"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <folder>",
		Short: "Relabel undetermined tracks in every file under a folder",
		Args:  folderArgs("mkvlang run"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args[0])
		},
	}
}

// runBatch processes every matching file under folder. Per-file failures are
// reported in the summary and do not fail the command.
func runBatch(cmd *cobra.Command, ctx *commandContext, folder string) error {
	root, err := checkFolder(folder)
	if err != nil {
		return err
	}

	app, err := openBatchApp(cmd, ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	runCtx := app.runContext(cmd.Context())
	app.startRun(runCtx, root, "run")

	runner := batch.NewRunner(app.processor, app.cfg.Processing.Extensions, app.logger)
	if rec := app.recorder(); rec != nil {
		runner.WithRecorder(rec)
	}
	stats, runErr := runner.Run(runCtx, root)
	app.finishRun(runCtx, stats)

	printSummary(cmd.OutOrStdout(), stats, app.dryRun)
	return runErr
}

func printSummary(out io.Writer, stats batch.Stats, dryRun bool) {
	if stats.Discovered == 0 {
		fmt.Fprintf(out, "No matching files under %s\n", stats.Root)
		return
	}
	rows := [][]string{
		{"Discovered", strconv.Itoa(stats.Discovered)},
		{"Patched", strconv.Itoa(stats.Patched)},
		{"Unchanged", strconv.Itoa(stats.Unchanged)},
		{"Declined", strconv.Itoa(stats.Declined)},
		{"Failed", strconv.Itoa(stats.Failed)},
	}
	if dryRun {
		rows = append(rows, []string{"Would patch", strconv.Itoa(stats.DryRun)})
	}
	if !stats.FinishedAt.IsZero() {
		rows = append(rows, []string{"Elapsed", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Millisecond).String()})
	}
	title := "Summary"
	if stats.Interrupted {
		title = "Summary (interrupted)"
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Title:   title,
		Headers: []string{"Outcome", "Files"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight},
	}))

	if len(stats.Failures) == 0 {
		return
	}
	failRows := make([][]string, 0, len(stats.Failures))
	for _, f := range stats.Failures {
		failRows = append(failRows, []string{filepath.Base(f.Path), firstLine(f.Error), f.BackupPath})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Title:    "Failures",
		Headers:  []string{"File", "Error", "Backup"},
		Rows:     failRows,
		MaxWidth: 60,
	}))
	for _, f := range stats.Failures {
		if f.BackupPath != "" {
			fmt.Fprintf(out, "Originals were kept as backups; run `mkvlang recover %s` to restore them.\n", stats.Root)
			break
		}
	}
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return line
}
