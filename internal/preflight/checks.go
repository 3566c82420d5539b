package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"aria2bt/internal/aria2"
)

const daemonCheckTimeout = 5 * time.Second

// VersionChecker is the subset of the aria2 client used by CheckDaemon.
type VersionChecker interface {
	GetVersion(ctx context.Context) (aria2.Version, error)
}

// CheckDaemon verifies that the aria2 daemon answers aria2.getVersion.
// It uses a 5-second timeout and a single attempt.
func CheckDaemon(ctx context.Context, name string, checker VersionChecker) Result {
	if checker == nil {
		return Result{Name: name, Detail: "no client"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, daemonCheckTimeout)
	defer cancel()

	version, err := checker.GetVersion(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeDaemonError(err)}
	}
	detail := "Reachable"
	if v := strings.TrimSpace(version.Version); v != "" {
		detail = fmt.Sprintf("Reachable (aria2 %s)", v)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeDaemonError produces a human-readable summary for version check failures.
func summarizeDaemonError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "version check timed out (daemon unresponsive)"
	}
	var protocol *aria2.ProtocolError
	if errors.As(err, &protocol) {
		if protocol.StatusCode == http.StatusUnauthorized {
			return "auth failed (check aria2.username/aria2.password)"
		}
		return fmt.Sprintf("unexpected HTTP %d (%s)", protocol.StatusCode, protocol.Message)
	}
	var fault *aria2.RemoteFault
	if errors.As(err, &fault) {
		if strings.EqualFold(strings.TrimSpace(fault.Message), "Unauthorized") {
			return "rpc secret rejected (check aria2.secret)"
		}
		return fmt.Sprintf("daemon refused version check (%s)", fault.Message)
	}
	var socket *aria2.SocketError
	if errors.As(err, &socket) {
		if socket.Op == "timeout" {
			return "version check timed out (daemon unreachable)"
		}
		return fmt.Sprintf("unreachable (%v)", socket.Err)
	}
	return err.Error()
}
