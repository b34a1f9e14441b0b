// Package history journals batch runs and per-file outcomes in SQLite.
//
// A Store satisfies batch.Recorder, so the runner writes one row per file as
// it goes. Runs are opened with StartRun and closed with FinishRun, which
// copies the final counters onto the run row. The history command reads the
// journal back with RecentRuns and RunFiles.
//
// The schema is embedded and versioned. A database created by a different
// schema version is rejected with ErrSchemaMismatch rather than migrated.
package history
