package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	flags := &processingFlags{}

	ctx := newCommandContext(&configFlag, &logLevelFlag, flags)

	rootCmd := &cobra.Command{
		Use:   "mkvlang <folder>",
		Short: "Label undetermined audio and subtitle tracks in Matroska files",
		Long: "mkvlang scans a folder for Matroska files and stamps a language on audio and\n" +
			"subtitle tracks whose language is undetermined (\"und\"), using mkvinfo and mkvmerge.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          folderArgs("mkvlang"),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.BoolVar(&flags.keepOriginal, "keep-original", false, "Keep <name>.mkv.original after a successful rewrite")
	pf.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Report what would change without touching any file")
	pf.BoolVar(&flags.nonInteractive, "non-interactive", false, "Skip files with several subtitle tracks instead of prompting")
	pf.StringVar(&flags.language, "language", "", "ISO 639-2 code to stamp on undetermined tracks (default from config: eng)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newRecoverCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
