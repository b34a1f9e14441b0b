package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mkvlang/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var prune time.Duration

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs, or the files of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled; set [history] enabled = true in the config")
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if prune > 0 {
				n, err := store.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d runs older than %s\n", n, prune)
				return nil
			}
			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				files, err := store.RunFiles(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					detail := f.Directives
					if f.Error != "" {
						detail = firstLine(f.Error)
					} else if detail == "" {
						detail = f.Reason
					}
					rows = append(rows, []string{filepath.Base(f.Path), f.Outcome, detail, f.Duration.Round(time.Millisecond).String()})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					Title:   fmt.Sprintf("Run %s (%s %s)", run.ID, run.Command, run.Root),
					Headers: []string{"File", "Outcome", "Detail", "Took"},
					Rows:    rows,
					Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				}))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				state := "finished"
				switch {
				case !r.Finished():
					state = "unfinished"
				case r.Interrupted:
					state = "interrupted"
				case r.DryRun:
					state = "dry run"
				}
				rows = append(rows, []string{
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Command,
					r.Root,
					strconv.Itoa(r.Patched + r.DryRunFiles),
					strconv.Itoa(r.Failed),
					state,
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Headers: []string{"Run", "Started", "Command", "Folder", "Patched", "Failed", "State"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to list")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete runs older than this age (e.g. 720h) instead of listing")
	return cmd
}
