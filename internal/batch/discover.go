package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mkvlang/internal/logging"
)

// Discover returns every regular file under root whose extension matches one
// of extensions (case-insensitive), sorted by path. Unreadable directories
// below root are logged and skipped.
func Discover(root string, extensions []string, logger *slog.Logger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("folder does not exist: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder does not exist: %s is not a directory", root)
	}

	wanted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = struct{}{}
	}

	var files []string
	err = WalkTree(root, logger, func(path string, d fs.DirEntry) error {
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// WalkTree calls visit for every entry under root. A path below root that
// cannot be read is logged and skipped, with its subtree when it is a
// directory; only a failure to read root itself is returned.
func WalkTree(root string, logger *slog.Logger, visit func(path string, d fs.DirEntry) error) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr == nil {
			return visit(path, d)
		}
		if path == root {
			return walkErr
		}
		logging.WarnWithContext(logger, "skipping unreadable path", "scan_path_skipped",
			logging.Error(walkErr),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "check the permissions of this path"),
			logging.String(logging.FieldImpact, "files below this path are not processed"),
		)
		if d != nil && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
}
