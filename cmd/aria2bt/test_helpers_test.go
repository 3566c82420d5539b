package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"aria2bt/internal/config"
	"aria2bt/internal/testsupport"
)

const showManifest = `
items:
  - title: Show 1995 S01E01
    content_files:
      - Show 1995 S01E01/Show.1995.S01E01.mkv
      - Show 1995 S01E01/Show.1995.S01E01.nfo
    fields:
      series_name: Show 1995
      series_id: S01E01
      torrent_url: http://seedbox.example/show.torrent
`

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *testsupport.FakeDaemon
	configPath string
	manifest   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	daemon := testsupport.NewFakeDaemon(t)
	opts = append([]testsupport.ConfigOption{
		testsupport.WithDaemon(daemon),
		testsupport.WithRenameTemplate("{{.series_name}} - {{.series_id}}"),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(homeDir, ".config", "aria2bt", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     daemon,
		configPath: configPath,
		manifest:   testsupport.WriteManifest(t, showManifest),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, string(data))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
