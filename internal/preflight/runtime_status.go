package preflight

import (
	"context"
	"fmt"

	"aria2bt/internal/aria2"
	"aria2bt/internal/config"
	"aria2bt/internal/submission"
)

const daemonCheckName = "aria2 daemon"

// CheckDaemonFromConfig builds a client from the configuration and checks it.
func CheckDaemonFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: daemonCheckName, Detail: "Unknown"}
	}
	sub, err := submission.NewConfig(cfg.SubmissionSettings())
	if err != nil {
		return Result{Name: daemonCheckName, Detail: fmt.Sprintf("invalid configuration (%v)", err)}
	}
	client, err := sub.Connect(aria2.WithEndpointPath(cfg.Aria2.EndpointPath))
	if err != nil {
		return Result{Name: daemonCheckName, Detail: err.Error()}
	}
	result := CheckDaemon(ctx, daemonCheckName, client)
	if result.Passed {
		result.Detail = fmt.Sprintf("%s at %s", result.Detail, client.URL())
	}
	return result
}
