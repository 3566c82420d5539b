package config

import (
	"fmt"
	"os"
	"strings"

	"aria2bt/internal/aria2"
	"aria2bt/internal/selection"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAria2()
	c.normalizeSubmission()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAria2() {
	c.Aria2.Server = strings.TrimSpace(c.Aria2.Server)
	if c.Aria2.Server == "" {
		c.Aria2.Server = aria2.DefaultServer
	}
	if c.Aria2.Port == 0 {
		c.Aria2.Port = aria2.DefaultPort
	}
	c.Aria2.Username = strings.TrimSpace(c.Aria2.Username)
	if c.Aria2.Password == "" {
		if value, ok := os.LookupEnv(envPassword); ok {
			c.Aria2.Password = value
		}
	}
	c.Aria2.Secret = strings.TrimSpace(c.Aria2.Secret)
	if c.Aria2.Secret == "" {
		if value, ok := os.LookupEnv(envSecret); ok {
			c.Aria2.Secret = strings.TrimSpace(value)
		}
	}
	c.Aria2.EndpointPath = strings.TrimSpace(c.Aria2.EndpointPath)
	if c.Aria2.EndpointPath == "" {
		c.Aria2.EndpointPath = aria2.DefaultEndpointPath
	}
}

func (c *Config) normalizeSubmission() {
	c.Submission.URI = strings.TrimSpace(c.Submission.URI)
	c.Submission.RenameTemplate = strings.TrimSpace(c.Submission.RenameTemplate)
	if len(c.Submission.FileExts) > 0 {
		exts := make([]string, 0, len(c.Submission.FileExts))
		seen := make(map[string]struct{}, len(c.Submission.FileExts))
		for _, ext := range c.Submission.FileExts {
			normalized := selection.NormalizeExt(ext)
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		c.Submission.FileExts = exts
	}
	if c.Submission.AriaConfig == nil {
		c.Submission.AriaConfig = map[string]any{}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
