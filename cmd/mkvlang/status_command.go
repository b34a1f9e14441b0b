package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mkvlang/internal/config"
	"mkvlang/internal/deps"
	"mkvlang/internal/language"
	"mkvlang/internal/preflight"
	"mkvlang/internal/runlock"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability, configuration, and whether a run is in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			p := newStatusPrinter(cmd.OutOrStdout())

			p.section("Tools")
			statuses := preflight.CheckSystemDeps(cfg)
			versions := make(map[string]string, len(statuses))
			for _, s := range statuses {
				if s.Available {
					versions[s.Name] = deps.Version(cmd.Context(), s.Path)
				}
			}
			p.tools(statuses, versions)

			p.section("Paths")
			p.checks(preflight.RunAll(cfg))
			if lockBusy(cfg) {
				p.line("Run lock", statusWarn, runlock.ErrLocked.Error())
			} else {
				p.line("Run lock", statusOK, "idle")
			}

			p.section("Processing")
			lang := cfg.Processing.Language
			p.line("Language", statusInfo, fmt.Sprintf("%s (%s)", lang, language.DisplayName(lang)))
			p.line("Extensions", statusInfo, strings.Join(cfg.Processing.Extensions, ", "))
			p.line("Backup suffix", statusInfo, cfg.Processing.BackupSuffix)
			p.line("Keep original", statusInfo, yesNo(cfg.Processing.KeepOriginal))
			p.line("Interactive", statusInfo, yesNo(!cfg.Processing.NonInteractive))
			if cfg.History.Enabled {
				p.line("History", statusInfo, cfg.History.Path)
			} else {
				p.line("History", statusInfo, "disabled")
			}

			if len(deps.Missing(statuses)) > 0 {
				return errors.New("required tools are missing")
			}
			return nil
		},
	}
}

// lockBusy probes the run lock without holding it.
func lockBusy(cfg *config.Config) bool {
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return errors.Is(err, runlock.ErrLocked)
	}
	_ = lock.Release()
	return false
}
