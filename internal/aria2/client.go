package aria2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"aria2bt/internal/logging"
)

const (
	// DefaultServer and DefaultPort match aria2's stock RPC listener.
	DefaultServer = "localhost"
	DefaultPort   = 6800
	// DefaultEndpointPath is aria2's JSON-RPC path.
	DefaultEndpointPath = "/jsonrpc"
	// DryRunGID is returned by dry-run submissions that carry no gid option.
	DryRunGID = "1234567890123456"

	methodAddURI     = "aria2.addUri"
	methodGetVersion = "aria2.getVersion"
	tokenPrefix      = "token:"
)

// Version is the aria2.getVersion result.
type Version struct {
	Version         string   `json:"version"`
	EnabledFeatures []string `json:"enabledFeatures"`
}

// Client talks to one aria2 daemon. It is safe for sequential reuse across
// items; it holds no per-call state.
type Client struct {
	endpoint     *url.URL
	endpointPath string
	httpClient   *http.Client
	secret       string
	dryRun       bool
	logger       *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSecret sets the daemon's --rpc-secret token.
func WithSecret(secret string) Option {
	return func(c *Client) {
		c.secret = strings.TrimSpace(secret)
	}
}

// WithDryRun makes AddURI return a placeholder GID without any network I/O.
func WithDryRun(dryRun bool) Option {
	return func(c *Client) {
		c.dryRun = dryRun
	}
}

// WithEndpointPath overrides the JSON-RPC path (defaults to /jsonrpc).
func WithEndpointPath(path string) Option {
	return func(c *Client) {
		c.endpointPath = path
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Connect builds a client for http://[username:password@]server:port/jsonrpc.
// server may carry an explicit http:// or https:// scheme. No request is made.
func Connect(server string, port int, username, password string, opts ...Option) (*Client, error) {
	client := &Client{
		endpointPath: DefaultEndpointPath,
		httpClient:   http.DefaultClient,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "aria2")

	endpoint, err := buildEndpoint(server, port, username, password, client.endpointPath)
	if err != nil {
		return nil, &ConnectionError{URL: redactedTarget(server, port), Err: err}
	}
	client.endpoint = endpoint
	return client, nil
}

func buildEndpoint(server string, port int, username, password, path string) (*url.URL, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, errors.New("server is required")
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("port %d out of range", port)
	}
	scheme := "http"
	if before, after, ok := strings.Cut(server, "://"); ok {
		scheme = strings.ToLower(before)
		server = strings.TrimRight(after, "/")
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	if server == "" || strings.ContainsAny(server, "/?#@") {
		return nil, fmt.Errorf("invalid server %q", server)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultEndpointPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint := &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(strings.Trim(server, "[]"), strconv.Itoa(port)),
		Path:   path,
	}
	if username != "" {
		endpoint.User = url.UserPassword(username, password)
	}
	return endpoint, nil
}

func redactedTarget(server string, port int) string {
	return fmt.Sprintf("%s:%d", strings.TrimSpace(server), port)
}

// URL returns the endpoint with any password redacted.
func (c *Client) URL() string {
	if c == nil || c.endpoint == nil {
		return ""
	}
	return c.endpoint.Redacted()
}

// DryRun reports whether the client skips network I/O.
func (c *Client) DryRun() bool {
	return c != nil && c.dryRun
}

// AddURI submits one download job and returns the daemon-assigned GID.
// Exactly one request is made; failures are not retried.
func (c *Client) AddURI(ctx context.Context, uris []string, options Options) (string, error) {
	if len(uris) == 0 {
		return "", &SubmissionError{Server: c.URL(), Err: errors.New("no source uri")}
	}
	if c.dryRun {
		gid := DryRunGID
		if value, ok := options[OptionGID]; ok && strings.TrimSpace(value.String()) != "" {
			gid = value.String()
		}
		c.logger.Info(
			"dry run: skipped add uri",
			logging.String("uri", uris[0]),
			logging.String("gid", gid),
			logging.Int("option_count", len(options)),
		)
		return gid, nil
	}
	if options == nil {
		options = Options{}
	}

	var gid string
	if err := c.call(ctx, methodAddURI, []any{uris, options}, &gid); err != nil {
		return "", &SubmissionError{Server: c.URL(), URI: uris[0], Err: err}
	}
	c.logger.Debug("add uri accepted", logging.String("uri", uris[0]), logging.String("gid", gid))
	return gid, nil
}

// GetVersion asks the daemon for its version.
func (c *Client) GetVersion(ctx context.Context) (Version, error) {
	var version Version
	if c.dryRun {
		return Version{Version: "dry-run"}, nil
	}
	if err := c.call(ctx, methodGetVersion, nil, &version); err != nil {
		return Version{}, &ConnectionError{URL: c.URL(), Err: err}
	}
	return version, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call issues one JSON-RPC request. The returned error is always classified.
func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	if c.secret != "" {
		params = append([]any{tokenPrefix + c.secret}, params...)
	}
	if params == nil {
		params = []any{}
	}
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &UnknownConnectionError{Err: fmt.Errorf("encode %s request: %w", method, err)}
	}

	target := *c.endpoint
	target.User = nil
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(encoded))
	if err != nil {
		return &UnknownConnectionError{Err: fmt.Errorf("new %s request: %w", method, err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if user := c.endpoint.User; user != nil {
		password, _ := user.Password()
		req.SetBasicAuth(user.Username(), password)
	}

	c.logger.Debug("rpc request", logging.String("method", method), logging.String("request_id", payload.ID))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classify(err)
	}

	var decoded rpcResponse
	decodeErr := json.Unmarshal(body, &decoded)
	if decodeErr == nil && decoded.Error != nil {
		return &RemoteFault{Code: decoded.Error.Code, Message: decoded.Error.Message}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := snippet(body)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &ProtocolError{StatusCode: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", decodeErr)}
	}
	if result == nil {
		return nil
	}
	if len(decoded.Result) == 0 {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: "response carried no result"}
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode %s result: %v", method, err)}
	}
	return nil
}
