package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools names the mkvtoolnix executables used to inspect and rewrite files.
type Tools struct {
	Mkvinfo  string `toml:"mkvinfo"`
	Mkvmerge string `toml:"mkvmerge"`
}

// Processing controls which files are scanned and how they are patched.
type Processing struct {
	// Language is the ISO 639-2 code stamped onto undetermined tracks.
	Language       string   `toml:"language"`
	Extensions     []string `toml:"extensions"`
	BackupSuffix   string   `toml:"backup_suffix"`
	SidecarSuffix  string   `toml:"sidecar_suffix"`
	KeepOriginal   bool     `toml:"keep_original"`
	NonInteractive bool     `toml:"non_interactive"`
}

// Paths contains directories owned by mkvlang.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// History controls the sqlite journal of processed files.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <state_dir>/history.db
}

// Watch contains configuration for the folder watcher.
type Watch struct {
	SettleSeconds int `toml:"settle_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config encapsulates all configuration values for mkvlang.
type Config struct {
	Tools      Tools      `toml:"tools"`
	Processing Processing `toml:"processing"`
	Paths      Paths      `toml:"paths"`
	History    History    `toml:"history"`
	Watch      Watch      `toml:"watch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load resolves the config file (see ResolvePath), decodes it over the
// defaults, applies .env and MKVLANG_* overrides, and validates the result.
// It returns the config, the file path considered and whether that file
// existed. A missing file is not an error; unknown keys are.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	resolved, exists, err := ResolvePath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, resolved, true, err
		}
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv populates unset environment variables from a dotenv file.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ResolvePath picks the config file. An explicit path is used as given, even
// when missing. Otherwise the default location wins over ./mkvlang.toml, and
// the default location is reported when neither exists.
func ResolvePath(explicit string) (string, bool, error) {
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, exists, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectConfigName} {
		candidate, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	return !info.IsDir(), nil
}

// EnsureDirectories creates the state directory and the parent of the log file.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	if c.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.History.Path), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by batch and watch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mkvlang.lock")
}

// MkvinfoBinary returns the prober executable.
func (c *Config) MkvinfoBinary() string {
	if c.Tools.Mkvinfo == "" {
		return defaultMkvinfo
	}
	return c.Tools.Mkvinfo
}

// MkvmergeBinary returns the muxer executable.
func (c *Config) MkvmergeBinary() string {
	if c.Tools.Mkvmerge == "" {
		return defaultMkvmerge
	}
	return c.Tools.Mkvmerge
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(pathValue, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = home + rest
	}
	abs, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return abs, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path, creating
// parent directories and replacing any existing file.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
