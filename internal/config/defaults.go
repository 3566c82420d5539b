package config

import "aria2bt/internal/aria2"

const (
	defaultConfigPath         = "~/.config/aria2bt/config.toml"
	projectConfigName         = "aria2bt.toml"
	defaultStateDir           = "~/.local/share/aria2bt"
	defaultLogDir             = "~/.local/share/aria2bt/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
	defaultHistoryRetention   = 90
	envPassword               = "ARIA2BT_ARIA2_PASSWORD"
	envSecret                 = "ARIA2BT_ARIA2_SECRET"
	defaultExcludeNonContent  = true
	defaultFixYear            = true
	defaultHistoryEnabled     = true
	defaultNotifySubmitted    = true
	defaultNotifyRunCompleted = true
	defaultNotifyErrors       = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Aria2: Aria2{
			Server:       aria2.DefaultServer,
			Port:         aria2.DefaultPort,
			EndpointPath: aria2.DefaultEndpointPath,
		},
		Submission: Submission{
			ExcludeNonContent: defaultExcludeNonContent,
			FixYear:           defaultFixYear,
			AriaConfig:        map[string]any{},
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Submitted:      defaultNotifySubmitted,
			Run:            defaultNotifyRunCompleted,
			Errors:         defaultNotifyErrors,
		},
		History: History{
			Enabled:       defaultHistoryEnabled,
			RetentionDays: defaultHistoryRetention,
		},
	}
}
