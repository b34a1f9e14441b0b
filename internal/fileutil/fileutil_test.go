package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupAndCanonicalPath(t *testing.T) {
	backup := BackupPath("/media/Film.mkv", ".original")
	if backup != "/media/Film.mkv.original" {
		t.Fatalf("BackupPath = %q", backup)
	}
	canonical, ok := CanonicalPath(backup, ".original")
	if !ok || canonical != "/media/Film.mkv" {
		t.Fatalf("CanonicalPath = %q, %v", canonical, ok)
	}
	if _, ok := CanonicalPath("/media/Film.mkv", ".original"); ok {
		t.Fatal("expected no canonical path for a non-backup name")
	}
	if _, ok := CanonicalPath("/media/Film.mkv", ""); ok {
		t.Fatal("expected empty suffix to be rejected")
	}
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("/media/Film.mkv", ".en.srt"); got != "/media/Film.en.srt" {
		t.Fatalf("SidecarPath = %q", got)
	}
	if got := SidecarPath("/media/Show.S01E01.mkv", ".en.srt"); got != "/media/Show.S01E01.en.srt" {
		t.Fatalf("SidecarPath = %q", got)
	}
	if got := SidecarPath("/media/Film.mkv", ""); got != "" {
		t.Fatalf("expected empty sidecar path, got %q", got)
	}
}

func TestExistsAndRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.en.srt")

	if ok, err := Exists(path); err != nil || ok {
		t.Fatalf("Exists before create = %v, %v", ok, err)
	}
	if removed, err := RemoveIfExists(path); err != nil || removed {
		t.Fatalf("RemoveIfExists on missing file = %v, %v", removed, err)
	}
	if err := os.WriteFile(path, []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := Exists(path); err != nil || !ok {
		t.Fatalf("Exists after create = %v, %v", ok, err)
	}
	if removed, err := RemoveIfExists(path); err != nil || !removed {
		t.Fatalf("RemoveIfExists = %v, %v", removed, err)
	}
	if removed, err := RemoveIfExists(""); err != nil || removed {
		t.Fatalf("RemoveIfExists(\"\") = %v, %v", removed, err)
	}
}

func TestRenameNoReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Film.mkv")
	dst := filepath.Join(dir, "Film.mkv.original")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("older backup"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := RenameNoReplace(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist, got %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "older backup" {
		t.Fatalf("backup was overwritten: %q", data)
	}

	if err := os.Remove(dst); err != nil {
		t.Fatal(err)
	}
	if err := RenameNoReplace(src, dst); err != nil {
		t.Fatalf("RenameNoReplace: %v", err)
	}
	if ok, _ := Exists(src); ok {
		t.Fatal("source should be gone after rename")
	}
}
