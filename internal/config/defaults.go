package config

const (
	defaultConfigPath         = "~/.config/mkvlang/config.toml"
	projectConfigName         = "mkvlang.toml"
	defaultStateDir           = "~/.local/share/mkvlang"
	defaultHistoryFile        = "history.db"
	defaultMkvinfo            = "mkvinfo"
	defaultMkvmerge           = "mkvmerge"
	defaultLanguage           = "eng"
	defaultExtension          = ".mkv"
	defaultBackupSuffix       = ".original"
	defaultSidecarSuffix      = ".en.srt"
	defaultWatchSettleSeconds = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 20
	defaultLogMaxBackups      = 5
	defaultLogMaxAgeDays      = 30
	envMkvinfo                = "MKVLANG_MKVINFO"
	envMkvmerge               = "MKVLANG_MKVMERGE"
	envLanguage               = "MKVLANG_LANGUAGE"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			Mkvinfo:  defaultMkvinfo,
			Mkvmerge: defaultMkvmerge,
		},
		Processing: Processing{
			Language:      defaultLanguage,
			Extensions:    []string{defaultExtension},
			BackupSuffix:  defaultBackupSuffix,
			SidecarSuffix: defaultSidecarSuffix,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		History: History{
			Enabled: true,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleSeconds,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
