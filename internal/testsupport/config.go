package testsupport

import (
	"path/filepath"
	"testing"

	"aria2bt/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config seeded with unique temp directories per
// test. The submission section renders the torrent_url field into the source
// URI and downloads into <base>/downloads/<series_name>.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Submission.URI = "{{.torrent_url}}"
	cfgVal.Submission.AriaConfig = map[string]any{
		"dir": filepath.Join(base, "downloads", "{{.series_name}}"),
	}
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithDaemon points the aria2 section at a FakeDaemon.
func WithDaemon(daemon *FakeDaemon) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Aria2.Server = daemon.Host()
		b.cfg.Aria2.Port = daemon.Port()
	}
}

// WithRenameTemplate enables content renaming with the given template.
func WithRenameTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Submission.RenameContentFiles = true
		b.cfg.Submission.RenameTemplate = template
	}
}

// WithAriaOption sets one forwarded daemon option.
func WithAriaOption(key string, value any) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Submission.AriaConfig[key] = value
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithHistoryDisabled turns off the submission history database.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
