package preflight

import (
	"fmt"
	"path/filepath"
	"strings"

	"mkvlang/internal/config"
	"mkvlang/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) != "" {
		dir := filepath.Dir(cfg.History.Path)
		if filepath.Clean(dir) != filepath.Clean(cfg.Paths.StateDir) {
			results = append(results, CheckDirectoryAccess("History directory", dir))
		}
	}
	return results
}

// RequireTools returns an error naming every required tool that is missing.
func RequireTools(cfg *config.Config) error {
	missing := deps.Missing(CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	parts := make([]string, 0, len(missing))
	for _, m := range missing {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, m.Detail))
	}
	return fmt.Errorf("missing required tools: %s; install mkvtoolnix or set [tools] in the config", strings.Join(parts, ", "))
}
