package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aria2bt/internal/config"
	"aria2bt/internal/submission"
)

const minimalConfig = `
[submission]
uri = "{{.torrent_url}}"

[submission.aria_config]
dir = "/srv/tv/{{.series_name}}"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func validConfig() config.Config {
	cfg := config.Default()
	cfg.Submission.URI = "{{.torrent_url}}"
	cfg.Submission.AriaConfig["dir"] = "/data"
	return cfg
}

func TestLoadWithoutFileRequiresURI(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without a config file")
	}
	if !strings.Contains(err.Error(), "submission.uri") {
		t.Fatalf("expected submission.uri guidance, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(tempHome, ".config", "aria2bt", "config.toml")) {
		t.Fatalf("expected default path in error, got %v", err)
	}
}

func TestLoadExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := writeConfig(t, minimalConfig+`
[paths]
state_dir = "~/state"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "aria2bt", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Aria2.Server != "localhost" || cfg.Aria2.Port != 6800 || cfg.Aria2.EndpointPath != "/jsonrpc" {
		t.Fatalf("unexpected aria2 defaults: %+v", cfg.Aria2)
	}
	if !cfg.Submission.ExcludeNonContent || !cfg.Submission.FixYear {
		t.Fatalf("expected content filter and year fix enabled by default: %+v", cfg.Submission)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, "state", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.LockPath() != filepath.Join(tempHome, "state", "aria2bt.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.LogFile() != filepath.Join(wantLogs, "aria2bt.log") {
		t.Fatalf("unexpected log file: %q", cfg.LogFile())
	}
	if cfg.NotificationTimeout() != 10*time.Second {
		t.Fatalf("unexpected notification timeout: %s", cfg.NotificationTimeout())
	}
}

func TestLoadUsesCredentialEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARIA2BT_ARIA2_PASSWORD", "hunter2")
	t.Setenv("ARIA2BT_ARIA2_SECRET", " s3cret ")
	path := writeConfig(t, `
[aria2]
server = "seedbox.example"
port = 6801
username = "alice"
`+minimalConfig)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Aria2.Password != "hunter2" {
		t.Fatalf("expected password from env, got %q", cfg.Aria2.Password)
	}
	if cfg.Aria2.Secret != "s3cret" {
		t.Fatalf("expected trimmed secret from env, got %q", cfg.Aria2.Secret)
	}
}

func TestLoadFilePasswordWinsOverEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARIA2BT_ARIA2_PASSWORD", "from-env")
	path := writeConfig(t, `
[aria2]
username = "alice"
password = "from-file"
`+minimalConfig)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Aria2.Password != "from-file" {
		t.Fatalf("expected file password, got %q", cfg.Aria2.Password)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, minimalConfig+`
[paths]
staging_dir = "/tmp"
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNormalizesExtensionsAndOptionTypes(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
[submission]
uri = "{{.torrent_url}}"
file_exts = ["MKV", ".mkv", "mp4", " "]

[submission.aria_config]
dir = "/data"
split = 5
seed-time = 0
check-integrity = true
header = ["X-A: 1", "X-B: {{.series_id}}"]
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	got := strings.Join(cfg.Submission.FileExts, ",")
	if got != ".mkv,.mp4" {
		t.Fatalf("unexpected extensions: %q", got)
	}

	sub, err := submission.NewConfig(cfg.SubmissionSettings())
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	options := sub.DaemonOptions()
	if options["split"].String() != "5" {
		t.Fatalf("expected split 5, got %q", options["split"].String())
	}
	if options["check-integrity"].String() != "true" {
		t.Fatalf("expected check-integrity true, got %q", options["check-integrity"].String())
	}
	if len(options["header"].List()) != 2 {
		t.Fatalf("expected header list, got %v", options["header"].List())
	}
}

func TestLoadPrefersProjectConfigWhenDefaultMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile(filepath.Join(project, "aria2bt.toml"), []byte(minimalConfig), 0o600); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	_, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "aria2bt.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
}

func TestValidateRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port", func(c *config.Config) { c.Aria2.Port = 70000 }, "aria2.port"},
		{"username without password", func(c *config.Config) { c.Aria2.Username = "alice" }, "aria2.password"},
		{"endpoint", func(c *config.Config) { c.Aria2.EndpointPath = "jsonrpc" }, "aria2.endpoint_path"},
		{"missing dir", func(c *config.Config) { delete(c.Submission.AriaConfig, "dir") }, "submission.aria_config.dir"},
		{"blank dir", func(c *config.Config) { c.Submission.AriaConfig["dir"] = " " }, "submission.aria_config.dir"},
		{"rename template", func(c *config.Config) { c.Submission.RenameContentFiles = true }, "submission.rename_template"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"notify timeout", func(c *config.Config) { c.Notifications.RequestTimeout = 0 }, "notifications.request_timeout"},
		{"retention", func(c *config.Config) { c.History.RetentionDays = -1 }, "history.retention_days"},
		{"option type", func(c *config.Config) { c.Submission.AriaConfig["ratio"] = 1.5 }, "aria_config.ratio"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestSubmissionSettingsCopiesOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Aria2.Secret = "token"
	cfg.Submission.FileExts = []string{".mkv"}

	settings := cfg.SubmissionSettings()
	settings.DaemonOptions["dir"] = "/elsewhere"
	settings.ContentExtensions[0] = ".avi"

	if cfg.Submission.AriaConfig["dir"] != "/data" {
		t.Fatal("settings options alias config map")
	}
	if cfg.Submission.FileExts[0] != ".mkv" {
		t.Fatal("settings extensions alias config slice")
	}
	if settings.Secret != "token" || settings.Port != 6800 {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestHistoryCutoff(t *testing.T) {
	cfg := validConfig()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	if got := cfg.HistoryCutoff(now); !got.Equal(now.AddDate(0, 0, -90)) {
		t.Fatalf("unexpected cutoff: %s", got)
	}
	cfg.History.RetentionDays = 0
	if got := cfg.HistoryCutoff(now); !got.IsZero() {
		t.Fatalf("expected zero cutoff for unlimited retention, got %s", got)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if !cfg.Submission.RenameContentFiles || cfg.Submission.RenameTemplate == "" {
		t.Fatalf("expected sample to enable renaming: %+v", cfg.Submission)
	}
}

func TestEnsureDirectoriesCreatesStateAndLogs(t *testing.T) {
	base := t.TempDir()
	cfg := validConfig()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
