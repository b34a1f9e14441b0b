package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mkvlang/internal/config"
	"mkvlang/internal/language"
	"mkvlang/internal/logging"
)

// processingFlags are the persistent flags that override [processing].
type processingFlags struct {
	keepOriginal   bool
	dryRun         bool
	nonInteractive bool
	language       string
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	flags        *processingFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, flags *processingFlags) *commandContext {
	if flags == nil {
		flags = &processingFlags{}
	}
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		flags:        flags,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if c.flags.keepOriginal {
		cfg.Processing.KeepOriginal = true
	}
	if c.flags.nonInteractive {
		cfg.Processing.NonInteractive = true
	}
	if lang := strings.TrimSpace(c.flags.language); lang != "" {
		code, err := language.Normalize3(lang)
		if err != nil {
			return fmt.Errorf("--language: %w", err)
		}
		cfg.Processing.Language = code
	}
	if c.logLevelFlag != nil {
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			if _, ok := logging.ParseLevel(level); !ok {
				return fmt.Errorf("--log-level: unsupported value %q", level)
			}
			cfg.Logging.Level = level
		}
	}
	return nil
}

func (c *commandContext) dryRun() bool {
	return c.flags.dryRun
}

// newLogger builds the run logger. Console output goes to the command's
// stderr so it never mixes with tables on stdout.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	opts := logging.OptionsFromConfig(cfg)
	opts.Stderr = cmd.ErrOrStderr()
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// folderArgs requires exactly one argument naming an existing directory.
func folderArgs(use string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("provide the folder to scan. Example: %s /path/to/videos\nRun %s --help for more details", use, use)
		}
		return nil
	}
}

func checkFolder(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("folder path is required")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("folder does not exist: %s", expanded)
		}
		return "", fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("folder does not exist: %s is not a directory", expanded)
	}
	return expanded, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
