package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mkvlang/internal/batch"
	"mkvlang/internal/history"
	"mkvlang/internal/mkvmerge"
	"mkvlang/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.StartRun(ctx, history.Run{ID: "run-1", Root: "/media", Command: "run", Language: "eng", StartedAt: started}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	results := []batch.Result{
		{
			Path:           "/media/a.mkv",
			Outcome:        batch.OutcomePatched,
			Directives:     []mkvmerge.LanguageDirective{{TrackNumber: 2, Language: "eng"}, {TrackNumber: 1, Language: "eng"}},
			SidecarRemoved: true,
			Duration:       1500 * time.Millisecond,
		},
		{Path: "/media/b.mkv", Outcome: batch.OutcomeFailed, BackupPath: "/media/b.mkv.original", Error: "remux failed"},
		{Path: "/media/c.mkv", Outcome: batch.OutcomeUnchanged, Reason: "no undetermined tracks to relabel"},
	}
	for _, res := range results {
		if err := store.RecordFile(ctx, "run-1", res); err != nil {
			t.Fatalf("RecordFile: %v", err)
		}
	}

	stats := batch.Stats{RunID: "run-1", Discovered: 3, Patched: 1, Failed: 1, Unchanged: 1, FinishedAt: started.Add(time.Minute)}
	if err := store.FinishRun(ctx, stats); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v %v", run, err)
	}
	if !run.Finished() || run.Patched != 1 || run.Failed != 1 || run.Discovered != 3 || run.Language != "eng" {
		t.Fatalf("unexpected run %+v", run)
	}
	if !run.StartedAt.Equal(started) {
		t.Fatalf("started_at = %s", run.StartedAt)
	}

	files, err := store.RunFiles(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(files))
	}
	if files[0].Directives != "2:eng 1:eng" || !files[0].SidecarRemoved || files[0].Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected first outcome %+v", files[0])
	}
	if files[1].BackupPath != "/media/b.mkv.original" || files[1].Error != "remux failed" {
		t.Fatalf("unexpected failure outcome %+v", files[1])
	}

	hist, err := store.FileHistory(ctx, "/media/c.mkv", 5)
	if err != nil || len(hist) != 1 || hist[0].Outcome != string(batch.OutcomeUnchanged) {
		t.Fatalf("FileHistory = %+v, %v", hist, err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.StartRun(ctx, history.Run{ID: id, Root: "/m", Command: "run", Language: "eng", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("StartRun %s: %v", id, err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if runs[0].Finished() {
		t.Fatal("run should not be finished")
	}
}

func TestRecordFileRequiresRun(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	err := store.RecordFile(context.Background(), "missing", batch.Result{Path: "/m/a.mkv", Outcome: batch.OutcomePatched})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	if err := store.FinishRun(context.Background(), batch.Stats{RunID: "nope"}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.StartRun(context.Background(), history.Run{ID: "r", Root: "/m", Command: "watch", Language: "eng"}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	_ = store.Close()

	store, err = history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	run, err := store.GetRun(context.Background(), "r")
	if err != nil || run == nil || run.Command != "watch" {
		t.Fatalf("GetRun after reopen = %+v, %v", run, err)
	}
	missing, err := store.GetRun(context.Background(), "other")
	if err != nil || missing != nil {
		t.Fatalf("expected nil run, got %+v, %v", missing, err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := history.Open("  "); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestPruneCascadesToFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for id, started := range map[string]time.Time{"old": old, "recent": recent} {
		if err := store.StartRun(ctx, history.Run{ID: id, Root: "/media", Command: "run", Language: "eng", StartedAt: started}); err != nil {
			t.Fatalf("StartRun %s: %v", id, err)
		}
		if err := store.RecordFile(ctx, id, batch.Result{Path: "/media/a.mkv", Outcome: batch.OutcomeUnchanged}); err != nil {
			t.Fatalf("RecordFile %s: %v", id, err)
		}
	}

	n, err := store.Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned %d runs, want 1", n)
	}
	if run, _ := store.GetRun(ctx, "old"); run != nil {
		t.Fatalf("old run still present: %+v", run)
	}
	files, err := store.FileHistory(ctx, "/media/a.mkv", 10)
	if err != nil {
		t.Fatalf("FileHistory: %v", err)
	}
	if len(files) != 1 || files[0].RunID != "recent" {
		t.Fatalf("expected only the recent outcome, got %+v", files)
	}
}
