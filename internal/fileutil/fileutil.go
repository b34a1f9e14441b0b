// Package fileutil derives the companion paths used while rewriting a
// container and wraps the filesystem calls around them.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BackupPath returns the name the original file is renamed to while the muxer
// writes the canonical path. The suffix is appended to the full name, so
// "Film.mkv" becomes "Film.mkv.original".
func BackupPath(path, suffix string) string {
	return path + suffix
}

// CanonicalPath reverses BackupPath. ok is false when path does not carry suffix.
func CanonicalPath(backupPath, suffix string) (string, bool) {
	if suffix == "" || !strings.HasSuffix(backupPath, suffix) {
		return "", false
	}
	canonical := strings.TrimSuffix(backupPath, suffix)
	if filepath.Base(canonical) == "" || strings.HasSuffix(canonical, string(filepath.Separator)) {
		return "", false
	}
	return canonical, true
}

// SidecarPath replaces the container extension with suffix ("Film.mkv" ->
// "Film.en.srt"). An empty suffix yields an empty path.
func SidecarPath(path, suffix string) string {
	if suffix == "" {
		return ""
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// RemoveIfExists deletes path and reports whether anything was removed.
func RemoveIfExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("remove %s: %w", path, err)
}

// RenameNoReplace renames src to dst, refusing to clobber an existing dst.
func RenameNoReplace(src, dst string) error {
	exists, err := Exists(dst)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dst, err)
	}
	if exists {
		return fmt.Errorf("rename %s: %w", dst, fs.ErrExist)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", src, dst, err)
	}
	return nil
}
