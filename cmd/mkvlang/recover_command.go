package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mkvlang/internal/batch"
	"mkvlang/internal/runlock"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <folder>",
		Short: "Restore originals left behind by failed rewrites",
		Long: "recover looks for <name>.mkv.original backups under the folder. A backup whose\n" +
			"<name>.mkv is missing is renamed back. When both files exist nothing is changed\n" +
			"and the pair is listed so you can decide which one to keep.",
		Args: folderArgs("mkvlang recover"),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := checkFolder(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			if !ctx.dryRun() {
				lock, err := runlock.Acquire(cfg.LockPath())
				if err != nil {
					return err
				}
				defer lock.Release()
			}

			results, err := batch.Recover(cmd.Context(), root, cfg.Processing.BackupSuffix, ctx.dryRun(), logger)
			out := cmd.OutOrStdout()
			if len(results) == 0 && err == nil {
				fmt.Fprintf(out, "No backups found under %s\n", root)
				return nil
			}
			rows := make([][]string, 0, len(results))
			var failed int
			for _, r := range results {
				detail := ""
				switch r.Action {
				case batch.RecoveryConflict:
					detail = "both files exist; left untouched"
				case batch.RecoveryFailed:
					failed++
					detail = r.Error
				}
				rows = append(rows, []string{r.Canonical, string(r.Action), detail})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Title:   "Recovery",
				Headers: []string{"File", "Action", "Detail"},
				Rows:    rows,
			}))
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d backups could not be restored", failed)
			}
			return nil
		},
	}
}
