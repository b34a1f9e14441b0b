package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mkvlang/internal/config"
	"mkvlang/internal/runlock"
	"mkvlang/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	fake       *testsupport.Mkvtoolnix
	configPath string
	mediaDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("MKVLANG_MKVINFO", "")
	t.Setenv("MKVLANG_MKVMERGE", "")
	t.Setenv("MKVLANG_LANGUAGE", "")

	fake := testsupport.NewMkvtoolnix(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithFakeMkvtoolnix(fake)}, opts...)...)
	base := testsupport.BaseDir(cfg)

	mediaDir := filepath.Join(base, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatalf("mkdir media dir: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		fake:       fake,
		configPath: configPath,
		mediaDir:   mediaDir,
	}
}

// addMedia writes name into the media folder and registers its mkvinfo dump.
func (e *cliTestEnv) addMedia(t *testing.T, name, dump string) string {
	t.Helper()
	path := filepath.Join(e.mediaDir, name)
	testsupport.WriteMedia(t, path, "original-bytes")
	e.fake.SetInfo(path, dump)
	return path
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

func mustAcquireLock(t *testing.T, env *cliTestEnv) *runlock.Lock {
	t.Helper()
	lock, err := runlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	return lock
}
