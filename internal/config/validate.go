package config

import (
	"errors"
	"fmt"
	"strings"

	"aria2bt/internal/submission"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAria2(); err != nil {
		return err
	}
	if err := c.validateSubmission(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if _, err := submission.NewConfig(c.SubmissionSettings()); err != nil {
		return fmt.Errorf("submission: %w", err)
	}
	return nil
}

func (c *Config) validateAria2() error {
	if strings.TrimSpace(c.Aria2.Server) == "" {
		return errors.New("aria2.server must be set")
	}
	if c.Aria2.Port < 1 || c.Aria2.Port > 65535 {
		return fmt.Errorf("aria2.port must be between 1 and 65535 (got %d)", c.Aria2.Port)
	}
	if c.Aria2.Username != "" && c.Aria2.Password == "" {
		return fmt.Errorf("aria2.password must be set when aria2.username is set (or set %s)", envPassword)
	}
	if !strings.HasPrefix(c.Aria2.EndpointPath, "/") {
		return errors.New("aria2.endpoint_path must start with /")
	}
	return nil
}

func (c *Config) validateSubmission() error {
	if c.Submission.URI == "" {
		return fmt.Errorf("submission.uri is required. Edit %s (create with 'aria2bt config init')", displayConfigPath())
	}
	dir, ok := c.Submission.AriaConfig["dir"]
	if !ok {
		return fmt.Errorf("submission.aria_config.dir (destination directory) is required. Edit %s (create with 'aria2bt config init')", displayConfigPath())
	}
	if text, isString := dir.(string); isString && strings.TrimSpace(text) == "" {
		return errors.New("submission.aria_config.dir must not be empty")
	}
	if c.Submission.RenameContentFiles && c.Submission.RenameTemplate == "" {
		return errors.New("submission.rename_template must be set when submission.rename_content_files is true")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	return nil
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
