package submission

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"aria2bt/internal/aria2"
	"aria2bt/internal/selection"
	"aria2bt/internal/services"
)

// DefaultContentExtensions are the video containers fetched when no
// extension list is configured.
var DefaultContentExtensions = []string{".mkv", ".avi", ".mp4", ".wmv", ".asf", ".divx", ".mov", ".mpg", ".rm"}

var reservedOptions = []string{aria2.OptionGID, aria2.OptionSelectFile, aria2.OptionIndexOut}

// Settings is the raw, unvalidated submission configuration.
type Settings struct {
	Server   string
	Port     int
	Username string
	Password string
	Secret   string

	URITemplate       string
	ExcludeSamples    bool
	ExcludeNonContent bool
	RenameFiles       bool
	RenameTemplate    string
	FixYear           bool
	ContentExtensions []string
	// DaemonOptions are forwarded to aria2 after templating. Values must be
	// strings, integers, bools or lists of strings; "dir" is required.
	DaemonOptions map[string]any
}

// ConfigError reports a missing or contradictory setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return services.ErrConfiguration }

// Config is validated, immutable submission configuration.
type Config struct {
	server   string
	port     int
	username string
	password string
	secret   string

	uriTemplate    string
	renameFiles    bool
	renameTemplate string
	fixYear        bool
	extensions     []string
	rules          selection.Rules
	options        aria2.Options
}

// NewConfig validates settings. It never contacts the daemon.
func NewConfig(settings Settings) (*Config, error) {
	cfg := &Config{
		server:         strings.TrimSpace(settings.Server),
		port:           settings.Port,
		username:       strings.TrimSpace(settings.Username),
		password:       settings.Password,
		secret:         strings.TrimSpace(settings.Secret),
		uriTemplate:    strings.TrimSpace(settings.URITemplate),
		renameFiles:    settings.RenameFiles,
		renameTemplate: strings.TrimSpace(settings.RenameTemplate),
		fixYear:        settings.FixYear,
	}
	if cfg.server == "" {
		cfg.server = aria2.DefaultServer
	}
	if cfg.port == 0 {
		cfg.port = aria2.DefaultPort
	}

	if strings.ContainsAny(cfg.server, " \t\r\n") {
		return nil, &ConfigError{Field: "server", Message: "must be a host name or address"}
	}
	if cfg.port < 1 || cfg.port > 65535 {
		return nil, &ConfigError{Field: "port", Message: fmt.Sprintf("must be between 1 and 65535 (got %d)", cfg.port)}
	}
	if cfg.username != "" && cfg.password == "" {
		return nil, &ConfigError{Field: "password", Message: "is required when username is set"}
	}
	if cfg.uriTemplate == "" {
		return nil, &ConfigError{Field: "uri", Message: "is required"}
	}
	if cfg.renameFiles && cfg.renameTemplate == "" {
		return nil, &ConfigError{Field: "rename_template", Message: "is required when rename_content_files is enabled"}
	}

	options, err := normalizeOptions(settings.DaemonOptions)
	if err != nil {
		return nil, err
	}
	cfg.options = options

	cfg.extensions = normalizeExtensions(settings.ContentExtensions)
	cfg.rules = selection.NewRules(settings.ExcludeSamples, settings.ExcludeNonContent, cfg.extensions)
	return cfg, nil
}

func normalizeOptions(raw map[string]any) (aria2.Options, error) {
	options := make(aria2.Options, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		name := strings.TrimSpace(key)
		if name == "" {
			return nil, &ConfigError{Field: "aria_config", Message: "contains an empty option name"}
		}
		if slices.Contains(reservedOptions, name) {
			continue
		}
		value, err := aria2.ValueOf(raw[key])
		if err != nil {
			return nil, &ConfigError{Field: "aria_config." + name, Message: err.Error()}
		}
		options[name] = value
	}
	dir, ok := options[aria2.OptionDir]
	if !ok {
		return nil, &ConfigError{Field: "aria_config.dir", Message: "(destination directory) is required"}
	}
	if dir.Kind() == aria2.KindList || strings.TrimSpace(dir.String()) == "" {
		return nil, &ConfigError{Field: "aria_config.dir", Message: "must be a non-empty path"}
	}
	return options, nil
}

func normalizeExtensions(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, ext := range raw {
		normalized := selection.NormalizeExt(ext)
		if normalized == "" || slices.Contains(out, normalized) {
			continue
		}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return slices.Clone(DefaultContentExtensions)
	}
	return out
}

func (c *Config) Server() string         { return c.server }
func (c *Config) Port() int              { return c.port }
func (c *Config) Username() string       { return c.username }
func (c *Config) URITemplate() string    { return c.uriTemplate }
func (c *Config) RenameFiles() bool      { return c.renameFiles }
func (c *Config) RenameTemplate() string { return c.renameTemplate }
func (c *Config) FixYear() bool          { return c.fixYear }
func (c *Config) Rules() selection.Rules { return c.rules }

// ContentExtensions returns the normalized extension list.
func (c *Config) ContentExtensions() []string { return slices.Clone(c.extensions) }

// Dir returns the configured destination directory template.
func (c *Config) Dir() string { return c.options[aria2.OptionDir].String() }

// DaemonOptions returns a fresh copy of the base daemon options.
func (c *Config) DaemonOptions() aria2.Options { return c.options.Clone() }

// Connect builds an RPC client for the configured daemon.
func (c *Config) Connect(opts ...aria2.Option) (*aria2.Client, error) {
	all := make([]aria2.Option, 0, len(opts)+1)
	all = append(all, aria2.WithSecret(c.secret))
	all = append(all, opts...)
	return aria2.Connect(c.server, c.port, c.username, c.password, all...)
}
