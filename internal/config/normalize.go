package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTools()
	c.normalizeProcessing()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	if c.Watch.SettleSeconds < 0 {
		c.Watch.SettleSeconds = 0
	}
	return nil
}

func (c *Config) normalizeTools() {
	if value, ok := lookupEnv(envMkvinfo); ok {
		c.Tools.Mkvinfo = value
	}
	if value, ok := lookupEnv(envMkvmerge); ok {
		c.Tools.Mkvmerge = value
	}
	c.Tools.Mkvinfo = strings.TrimSpace(c.Tools.Mkvinfo)
	if c.Tools.Mkvinfo == "" {
		c.Tools.Mkvinfo = defaultMkvinfo
	}
	c.Tools.Mkvmerge = strings.TrimSpace(c.Tools.Mkvmerge)
	if c.Tools.Mkvmerge == "" {
		c.Tools.Mkvmerge = defaultMkvmerge
	}
}

func (c *Config) normalizeProcessing() {
	if value, ok := lookupEnv(envLanguage); ok {
		c.Processing.Language = value
	}
	c.Processing.Language = strings.ToLower(strings.TrimSpace(c.Processing.Language))
	if c.Processing.Language == "" {
		c.Processing.Language = defaultLanguage
	}

	exts := make([]string, 0, len(c.Processing.Extensions))
	seen := make(map[string]struct{}, len(c.Processing.Extensions))
	for _, ext := range c.Processing.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultExtension}
	}
	c.Processing.Extensions = exts

	c.Processing.BackupSuffix = strings.TrimSpace(c.Processing.BackupSuffix)
	if c.Processing.BackupSuffix == "" {
		c.Processing.BackupSuffix = defaultBackupSuffix
	}
	c.Processing.SidecarSuffix = strings.TrimSpace(c.Processing.SidecarSuffix)
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.Logging.MaxSizeMB < 0 {
		c.Logging.MaxSizeMB = 0
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}
