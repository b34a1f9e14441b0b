package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRecover(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "show")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// a: orphaned backup, b: backup next to its rewritten file.
	writeFiles(t, root, "a.mkv.original", "b.mkv", "b.mkv.original", "c.mkv")
	writeFiles(t, sub, "e01.mkv.original")

	t.Run("dry run", func(t *testing.T) {
		results, err := Recover(context.Background(), root, ".original", true, nil)
		if err != nil {
			t.Fatalf("Recover: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 backups, got %+v", results)
		}
		for _, r := range results {
			if r.Action == RecoveryRestored {
				t.Fatalf("dry run restored %s", r.Backup)
			}
		}
		if _, err := os.Stat(filepath.Join(root, "a.mkv.original")); err != nil {
			t.Fatalf("dry run touched backup: %v", err)
		}
	})

	results, err := Recover(context.Background(), root, ".original", false, nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	actions := map[string]RecoveryAction{}
	for _, r := range results {
		actions[r.Canonical] = r.Action
	}
	if actions[filepath.Join(root, "a.mkv")] != RecoveryRestored {
		t.Fatalf("a.mkv: %v", actions)
	}
	if actions[filepath.Join(root, "b.mkv")] != RecoveryConflict {
		t.Fatalf("b.mkv: %v", actions)
	}
	if actions[filepath.Join(sub, "e01.mkv")] != RecoveryRestored {
		t.Fatalf("e01.mkv: %v", actions)
	}
	if _, err := os.Stat(filepath.Join(root, "a.mkv")); err != nil {
		t.Fatalf("a.mkv not restored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "b.mkv.original")); err != nil {
		t.Fatalf("conflicting backup should stay: %v", err)
	}
}

func TestRecoverRejectsEmptySuffix(t *testing.T) {
	if _, err := Recover(context.Background(), t.TempDir(), " ", false, nil); err == nil {
		t.Fatal("expected error for empty suffix")
	}
}

func TestRecoverSkipsUnreadableDirectory(t *testing.T) {
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	if err := os.MkdirAll(locked, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, "a.mkv.original")
	writeFiles(t, locked, "b.mkv.original")
	lockDir(t, locked)

	results, err := Recover(context.Background(), root, ".original", false, nil)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(results) != 1 || results[0].Action != RecoveryRestored {
		t.Fatalf("expected the readable backup restored, got %+v", results)
	}
	if _, err := os.Stat(filepath.Join(root, "a.mkv")); err != nil {
		t.Fatalf("backup not restored: %v", err)
	}
}
