package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mkvlang/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns the default configuration with its state directory and
// history database moved under a per-test temp root. Logging runs at debug so
// failing tests show the decision trail.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(root, "state")
	cfg.History.Path = filepath.Join(cfg.Paths.StateDir, "history.db")
	cfg.Logging.Level = "debug"

	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp root NewConfig created for cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithKeepOriginal sets processing.keep_original.
func WithKeepOriginal(keep bool) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Processing.KeepOriginal = keep
	}
}

// WithFakeMkvtoolnix points tools.mkvinfo and tools.mkvmerge at fake.
func WithFakeMkvtoolnix(fake *Mkvtoolnix) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Tools.Mkvinfo = fake.MkvinfoPath()
		cfg.Tools.Mkvmerge = fake.MkvmergePath()
	}
}

// WithStubbedBinaries puts do-nothing executables named after the tools on
// PATH, so the default bare tool names resolve. With no names, mkvinfo and
// mkvmerge are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, root string, _ *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{"mkvinfo", "mkvmerge"}
		}
		binDir := filepath.Join(root, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("create stub dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
