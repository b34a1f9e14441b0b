package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"mkvlang/internal/fileutil"
	"mkvlang/internal/logging"
)

// RecoveryAction describes what Recover did with one backup.
type RecoveryAction string

const (
	// RecoveryRestored means the backup was renamed back to its canonical name.
	RecoveryRestored RecoveryAction = "restored"
	// RecoveryWouldRestore is the dry-run form of RecoveryRestored.
	RecoveryWouldRestore RecoveryAction = "would_restore"
	// RecoveryConflict means both backup and canonical file exist; nothing was changed.
	RecoveryConflict RecoveryAction = "conflict"
	// RecoveryFailed means the rename back failed.
	RecoveryFailed RecoveryAction = "failed"
)

// Recovery reports one backup found under the recovered folder.
type Recovery struct {
	Backup    string
	Canonical string
	Action    RecoveryAction
	Error     string
}

// Recover scans root for backups left by failed rewrites. A backup whose
// canonical path is absent is renamed back. Backups next to an existing
// canonical file are reported as conflicts and left alone, since either file
// may be the one the user wants.
func Recover(ctx context.Context, root, suffix string, dryRun bool, logger *slog.Logger) ([]Recovery, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "recover"))
	if strings.TrimSpace(suffix) == "" {
		return nil, fmt.Errorf("recover: backup suffix is empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("folder does not exist: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder does not exist: %s is not a directory", root)
	}

	var backups []string
	err = WalkTree(root, logger, func(path string, d fs.DirEntry) error {
		if d.Type().IsRegular() && strings.HasSuffix(path, suffix) {
			backups = append(backups, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(backups)

	results := make([]Recovery, 0, len(backups))
	for _, backup := range backups {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		canonical, ok := fileutil.CanonicalPath(backup, suffix)
		if !ok {
			continue
		}
		rec := Recovery{Backup: backup, Canonical: canonical}
		exists, err := fileutil.Exists(canonical)
		switch {
		case err != nil:
			rec.Action = RecoveryFailed
			rec.Error = err.Error()
		case exists:
			rec.Action = RecoveryConflict
			logging.WarnWithContext(logger, "backup and rewritten file both exist", "recover_conflict",
				logging.String(logging.FieldFile, canonical),
				logging.String("backup_path", backup),
				logging.String(logging.FieldImpact, "left untouched"),
				logging.String(logging.FieldErrorHint, "compare both files and delete the one you do not want"),
			)
		case dryRun:
			rec.Action = RecoveryWouldRestore
			logger.Info("dry run: would restore backup", logging.String(logging.FieldFile, canonical), logging.String("backup_path", backup))
		default:
			if err := fileutil.RenameNoReplace(backup, canonical); err != nil {
				rec.Action = RecoveryFailed
				rec.Error = err.Error()
				logging.ErrorWithContext(logger, "failed to restore backup", "recover_failed",
					logging.Error(err),
					logging.String("backup_path", backup),
				)
			} else {
				rec.Action = RecoveryRestored
				logger.Info("restored backup", logging.String(logging.FieldFile, canonical))
			}
		}
		results = append(results, rec)
	}
	return results, nil
}
