package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"aria2bt/internal/submission"
)

//go:embed sample_config.toml
var sampleConfig string

// Aria2 contains the daemon connection settings.
type Aria2 struct {
	Server       string `toml:"server"`
	Port         int    `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Secret       string `toml:"secret"`
	EndpointPath string `toml:"endpoint_path"`
}

// Submission contains file selection, renaming and job option settings.
type Submission struct {
	URI                string         `toml:"uri"`
	ExcludeSamples     bool           `toml:"exclude_samples"`
	ExcludeNonContent  bool           `toml:"exclude_non_content"`
	RenameContentFiles bool           `toml:"rename_content_files"`
	RenameTemplate     string         `toml:"rename_template"`
	FixYear            bool           `toml:"fix_year"`
	FileExts           []string       `toml:"file_exts"`
	AriaConfig         map[string]any `toml:"aria_config"`
}

// Paths contains state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Submitted      bool   `toml:"submitted"`
	Run            bool   `toml:"run"`
	Errors         bool   `toml:"errors"`
}

// History contains configuration for the submission history database.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Config encapsulates all configuration values for aria2bt.
//
// Configuration sections:
//   - Aria2: daemon endpoint and credentials
//   - Submission: selection rules, templates and forwarded daemon options
//   - Paths: state (history, lock) and log directories
//   - Logging: log format and level
//   - Notifications: ntfy push notification settings
//   - History: submission history retention
type Config struct {
	Aria2         Aria2         `toml:"aria2"`
	Submission    Submission    `toml:"submission"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	History       History       `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SubmissionSettings maps the [aria2] and [submission] sections onto the
// raw settings consumed by submission.NewConfig.
func (c *Config) SubmissionSettings() submission.Settings {
	options := make(map[string]any, len(c.Submission.AriaConfig))
	maps.Copy(options, c.Submission.AriaConfig)
	return submission.Settings{
		Server:            c.Aria2.Server,
		Port:              c.Aria2.Port,
		Username:          c.Aria2.Username,
		Password:          c.Aria2.Password,
		Secret:            c.Aria2.Secret,
		URITemplate:       c.Submission.URI,
		ExcludeSamples:    c.Submission.ExcludeSamples,
		ExcludeNonContent: c.Submission.ExcludeNonContent,
		RenameFiles:       c.Submission.RenameContentFiles,
		RenameTemplate:    c.Submission.RenameTemplate,
		FixYear:           c.Submission.FixYear,
		ContentExtensions: append([]string(nil), c.Submission.FileExts...),
		DaemonOptions:     options,
	}
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the submission history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "aria2bt.lock")
}

// LogFile returns the log file location, or "" when file logging is off.
func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "aria2bt.log")
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// HistoryCutoff returns the time before which history rows are pruned, or
// the zero time when retention is unlimited.
func (c *Config) HistoryCutoff(now time.Time) time.Time {
	if c.History.RetentionDays <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.History.RetentionDays)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
