package config

import (
	"errors"
	"fmt"
	"strings"

	"mkvlang/internal/language"
)

// Validate ensures the configuration is usable. It also canonicalizes the
// target language to its ISO 639-2 form.
func (c *Config) Validate() error {
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Watch.SettleSeconds < 0 {
		return errors.New("watch.settle_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	code, err := language.Normalize3(c.Processing.Language)
	if err != nil {
		return fmt.Errorf("processing.language: %w", err)
	}
	c.Processing.Language = code

	if len(c.Processing.Extensions) == 0 {
		return errors.New("processing.extensions must include at least one extension")
	}
	if !strings.HasPrefix(c.Processing.BackupSuffix, ".") {
		return fmt.Errorf("processing.backup_suffix %q must start with '.'", c.Processing.BackupSuffix)
	}
	for _, ext := range c.Processing.Extensions {
		if strings.EqualFold(ext, c.Processing.BackupSuffix) {
			return fmt.Errorf("processing.backup_suffix %q collides with a scanned extension", c.Processing.BackupSuffix)
		}
	}
	if suffix := c.Processing.SidecarSuffix; suffix != "" && !strings.HasPrefix(suffix, ".") {
		return fmt.Errorf("processing.sidecar_suffix %q must start with '.'", suffix)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
