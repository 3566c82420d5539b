package aria2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"aria2bt/internal/services"
)

// ProtocolError reports an HTTP-level failure: a non-2xx status without a
// JSON-RPC error body, or a response that could not be decoded.
type ProtocolError struct {
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: http %d: %s", e.StatusCode, e.Message)
}

// RemoteFault is the JSON-RPC error object returned by the daemon.
type RemoteFault struct {
	Code    int
	Message string
}

func (e *RemoteFault) Error() string {
	return fmt.Sprintf("remote fault %d: %s", e.Code, e.Message)
}

// SocketError reports a network-level failure (refused, reset, timeout, DNS).
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("socket error: %v", e.Err)
	}
	return fmt.Sprintf("socket error during %s: %v", e.Op, e.Err)
}

func (e *SocketError) Unwrap() error { return e.Err }

// UnknownConnectionError wraps failures that fit no other class.
type UnknownConnectionError struct {
	Err error
}

func (e *UnknownConnectionError) Error() string {
	return fmt.Sprintf("unidentified error: %v", e.Err)
}

func (e *UnknownConnectionError) Unwrap() error { return e.Err }

// ConnectionError reports an unusable endpoint or a failed call.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to aria2 at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{services.ErrExternalTool, e.Err}
}

// SubmissionError reports a failed addUri call. Server is the redacted
// endpoint; Err is one of the classified transport errors.
type SubmissionError struct {
	Server string
	URI    string
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("aria2 at %s: add uri request failed: %v", e.Server, e.Err)
	}
	return fmt.Sprintf("aria2 at %s: add uri request for %s failed: %v", e.Server, e.URI, e.Err)
}

func (e *SubmissionError) Unwrap() []error {
	return []error{services.ErrExternalTool, e.Err}
}

// Classify maps a transport failure onto ProtocolError, RemoteFault,
// SocketError or UnknownConnectionError. Already classified errors are
// returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		protoErr  *ProtocolError
		faultErr  *RemoteFault
		socketErr *SocketError
		unknown   *UnknownConnectionError
	)
	switch {
	case errors.As(err, &protoErr):
		return protoErr
	case errors.As(err, &faultErr):
		return faultErr
	case errors.As(err, &socketErr):
		return socketErr
	case errors.As(err, &unknown):
		return unknown
	}

	if errors.Is(err, context.Canceled) {
		return &UnknownConnectionError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SocketError{Op: "timeout", Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &SocketError{Op: opErr.Op, Err: opErr.Err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &SocketError{Op: "lookup", Err: dnsErr}
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &SocketError{Err: errno}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SocketError{Op: "read", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &SocketError{Op: "timeout", Err: err}
	}
	return &UnknownConnectionError{Err: err}
}

// snippet trims a response body for inclusion in error messages.
func snippet(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
