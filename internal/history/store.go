package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mkvlang/internal/batch"
)

// Store manages the run journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	// Pragmas travel in the DSN so every pooled connection enforces them.
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts the run row that file outcomes hang off.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("start run: empty run id")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, command, language, dry_run, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Root,
		run.Command,
		run.Language,
		boolToInt(run.DryRun),
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFile journals one file result under runID.
func (s *Store) RecordFile(ctx context.Context, runID string, res batch.Result) error {
	directives := make([]string, 0, len(res.Directives))
	for _, d := range res.Directives {
		directives = append(directives, d.String())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_outcomes (
            run_id, path, outcome, directives, backup_path, sidecar_removed,
            reason, error, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		res.Path,
		string(res.Outcome),
		nullableString(strings.Join(directives, " ")),
		nullableString(res.BackupPath),
		boolToInt(res.SidecarRemoved),
		nullableString(res.Reason),
		nullableString(res.Error),
		res.Duration.Milliseconds(),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert file outcome: %w", err)
	}
	return nil
}

// FinishRun stores the final counters for stats.RunID.
func (s *Store) FinishRun(ctx context.Context, stats batch.Stats) error {
	finished := stats.FinishedAt
	if finished.IsZero() {
		finished = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, discovered = ?, patched = ?, unchanged = ?,
            declined = ?, failed = ?, dry_run_files = ?, interrupted = ? WHERE id = ?`,
		formatTime(finished),
		stats.Discovered,
		stats.Patched,
		stats.Unchanged,
		stats.Declined,
		stats.Failed,
		stats.DryRun,
		boolToInt(stats.Interrupted),
		stats.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", stats.RunID, sql.ErrNoRows)
	}
	return nil
}

// Prune deletes runs started before cutoff together with their file
// outcomes and reports how many runs were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, command, language, dry_run, started_at, finished_at,
            discovered, patched, unchanged, declined, failed, dry_run_files, interrupted
        FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root, command, language, dry_run, started_at, finished_at,
            discovered, patched, unchanged, declined, failed, dry_run_files, interrupted
        FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RunFiles returns the file outcomes recorded for runID in processing order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileOutcome, error) {
	return s.queryFiles(ctx, `WHERE run_id = ? ORDER BY id`, runID)
}

// FileHistory returns the most recent outcomes recorded for path, newest first.
func (s *Store) FileHistory(ctx context.Context, path string, limit int) ([]FileOutcome, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryFiles(ctx, `WHERE path = ? ORDER BY id DESC LIMIT ?`, path, limit)
}

func (s *Store) queryFiles(ctx context.Context, where string, args ...any) ([]FileOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, path, outcome, directives, backup_path, sidecar_removed,
            reason, error, duration_ms, recorded_at
        FROM file_outcomes `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query file outcomes: %w", err)
	}
	defer rows.Close()

	var out []FileOutcome
	for rows.Next() {
		var (
			f                                   FileOutcome
			directives, backup, reason, errText sql.NullString
			sidecar                             int
			durationMS                          int64
			recorded                            string
		)
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Outcome, &directives, &backup, &sidecar,
			&reason, &errText, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan file outcome: %w", err)
		}
		f.Directives = directives.String
		f.BackupPath = backup.String
		f.SidecarRemoved = sidecar != 0
		f.Reason = reason.String
		f.Error = errText.String
		f.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := parseTimeString(recorded); err == nil {
			f.RecordedAt = t
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run               Run
		dryRun, interrupt int
		started           string
		finished          sql.NullString
	)
	err := scanner.Scan(&run.ID, &run.Root, &run.Command, &run.Language, &dryRun, &started, &finished,
		&run.Discovered, &run.Patched, &run.Unchanged, &run.Declined, &run.Failed, &run.DryRunFiles, &interrupt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	run.Interrupted = interrupt != 0
	if t, err := parseTimeString(started); err == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, err := parseTimeString(finished.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return run, nil
}
