package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aria2bt/internal/config"
)

const userAgent = "aria2bt/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyJobSubmitted(ctx context.Context, title, gid string, selected int) error
	NotifyRunCompleted(ctx context.Context, submitted, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		submitted: cfg.Notifications.Submitted,
		run:       cfg.Notifications.Run,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client

	submitted bool
	run       bool
	errors    bool
}

func (n *ntfyService) NotifyJobSubmitted(ctx context.Context, title, gid string, selected int) error {
	if !n.submitted {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("📥 Queued: %s", title)
	if selected > 0 {
		message = fmt.Sprintf("%s (%d %s)", message, selected, plural(selected, "file", "files"))
	}
	if gid = strings.TrimSpace(gid); gid != "" {
		message = fmt.Sprintf("%s\nGID: %s", message, gid)
	}
	return n.send(ctx, payload{
		title:   "aria2bt - Job Submitted",
		message: message,
		tags:    []string{"aria2bt", "job", "submitted"},
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, submitted, failed int, duration time.Duration) error {
	if !n.run {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{tags: []string{"aria2bt", "run", "completed"}}
	if failed == 0 {
		data.title = "aria2bt - Run Complete"
		data.message = fmt.Sprintf("Run complete: %d %s submitted in %s", submitted, plural(submitted, "item", "items"), duration)
	} else {
		data.title = "aria2bt - Run Complete (with errors)"
		data.message = fmt.Sprintf("Run complete: %d submitted, %d failed in %s", submitted, failed, duration)
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "aria2bt - Error",
		message:  builder.String(),
		tags:     []string{"aria2bt", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "aria2bt - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"aria2bt", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type noopService struct{}

func (noopService) NotifyJobSubmitted(context.Context, string, string, int) error      { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                  { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
