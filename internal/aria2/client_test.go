package aria2_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"aria2bt/internal/aria2"
	"aria2bt/internal/services"
)

type capturedRequest struct {
	Method string            `json:"method"`
	ID     string            `json:"id"`
	Params []json.RawMessage `json:"params"`
}

func connectTo(t *testing.T, server *httptest.Server, username, password string, opts ...aria2.Option) *aria2.Client {
	t.Helper()
	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(parsed.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	client, err := aria2.Connect(parsed.Hostname(), port, username, password, opts...)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return client
}

func TestConnectBuildsEndpoint(t *testing.T) {
	client, err := aria2.Connect("seedbox", 6800, "", "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := client.URL(); got != "http://seedbox:6800/jsonrpc" {
		t.Fatalf("unexpected url %q", got)
	}

	client, err = aria2.Connect("seedbox", 6800, "alice", "hunter2", aria2.WithEndpointPath("rpc"))
	if err != nil {
		t.Fatalf("Connect with credentials: %v", err)
	}
	if got := client.URL(); strings.Contains(got, "hunter2") || !strings.Contains(got, "alice") || !strings.HasSuffix(got, "/rpc") {
		t.Fatalf("expected redacted url with custom path, got %q", got)
	}

	client, err = aria2.Connect("https://secure.example", 443, "", "")
	if err != nil {
		t.Fatalf("Connect https: %v", err)
	}
	if got := client.URL(); got != "https://secure.example:443/jsonrpc" {
		t.Fatalf("unexpected https url %q", got)
	}
}

func TestConnectRejectsUnusableEndpoint(t *testing.T) {
	cases := []struct {
		name   string
		server string
		port   int
	}{
		{name: "blank server", server: " ", port: 6800},
		{name: "zero port", server: "localhost", port: 0},
		{name: "port too large", server: "localhost", port: 70000},
		{name: "bad scheme", server: "ftp://host", port: 21},
		{name: "path in server", server: "host/extra", port: 6800},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := aria2.Connect(tc.server, tc.port, "", "")
			var connErr *aria2.ConnectionError
			if !errors.As(err, &connErr) {
				t.Fatalf("expected ConnectionError, got %v", err)
			}
		})
	}
}

func TestAddURISendsRequest(t *testing.T) {
	var captured capturedRequest
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsonrpc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": captured.ID, "result": "2089b05ecca3d829"})
	}))
	defer server.Close()

	client := connectTo(t, server, "alice", "hunter2", aria2.WithSecret("s3cret"))
	options := aria2.Options{
		aria2.OptionDir:        aria2.String("/downloads/Show"),
		aria2.OptionSelectFile: aria2.String("1,3"),
		aria2.OptionIndexOut:   aria2.List("1=Show S01E01.mkv"),
		"max-connection-per-server": aria2.Int(4),
		"continue":                  aria2.Bool(true),
	}
	gid, err := client.AddURI(context.Background(), []string{"http://seedbox/show.torrent"}, options)
	if err != nil {
		t.Fatalf("AddURI: %v", err)
	}
	if gid != "2089b05ecca3d829" {
		t.Fatalf("unexpected gid %q", gid)
	}
	if user != "alice" || pass != "hunter2" {
		t.Fatalf("expected basic auth alice/hunter2, got %q/%q", user, pass)
	}
	if captured.Method != "aria2.addUri" {
		t.Fatalf("unexpected method %q", captured.Method)
	}
	if captured.ID == "" {
		t.Fatal("expected request id")
	}
	if len(captured.Params) != 3 {
		t.Fatalf("expected token, uris and options params, got %d", len(captured.Params))
	}
	var token string
	if err := json.Unmarshal(captured.Params[0], &token); err != nil || token != "token:s3cret" {
		t.Fatalf("unexpected token param %s", captured.Params[0])
	}
	var uris []string
	if err := json.Unmarshal(captured.Params[1], &uris); err != nil || len(uris) != 1 || uris[0] != "http://seedbox/show.torrent" {
		t.Fatalf("unexpected uris param %s", captured.Params[1])
	}
	var sent map[string]any
	if err := json.Unmarshal(captured.Params[2], &sent); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	if sent["select-file"] != "1,3" || sent["max-connection-per-server"] != "4" || sent["continue"] != "true" {
		t.Fatalf("scalar options should be sent as strings: %v", sent)
	}
	indexOut, ok := sent["index-out"].([]any)
	if !ok || len(indexOut) != 1 || indexOut[0] != "1=Show S01E01.mkv" {
		t.Fatalf("index-out should be a string list: %v", sent["index-out"])
	}
}

func TestAddURIWithoutSecretOmitsToken(t *testing.T) {
	var captured capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "abc"})
	}))
	defer server.Close()

	client := connectTo(t, server, "", "")
	if _, err := client.AddURI(context.Background(), []string{"magnet:?xt=demo"}, nil); err != nil {
		t.Fatalf("AddURI: %v", err)
	}
	if len(captured.Params) != 2 {
		t.Fatalf("expected uris and options only, got %d params", len(captured.Params))
	}
}

func TestAddURIRemoteFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"error":   map[string]any{"code": 1, "message": "GID 1234567890123456 is not unique."},
		})
	}))
	defer server.Close()

	client := connectTo(t, server, "", "")
	_, err := client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{})

	var subErr *aria2.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	var fault *aria2.RemoteFault
	if !errors.As(err, &fault) || fault.Code != 1 {
		t.Fatalf("expected remote fault code 1, got %v", err)
	}
	if !strings.Contains(err.Error(), "not unique") || !strings.Contains(err.Error(), client.URL()) {
		t.Fatalf("message should name the fault and server: %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker")
	}
}

func TestAddURIProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := connectTo(t, server, "alice", "wrong")
	_, err := client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{})
	var protoErr *aria2.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if protoErr.StatusCode != http.StatusUnauthorized || protoErr.Message != "unauthorized" {
		t.Fatalf("unexpected protocol error %+v", protoErr)
	}
	if strings.Contains(err.Error(), "wrong") {
		t.Fatalf("password leaked into message: %v", err)
	}
}

func TestAddURIUndecodableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := connectTo(t, server, "", "")
	_, err := client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{})
	var protoErr *aria2.ProtocolError
	if !errors.As(err, &protoErr) || protoErr.StatusCode != http.StatusOK {
		t.Fatalf("expected ProtocolError with 200 status, got %v", err)
	}
}

func TestAddURISocketError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := connectTo(t, server, "", "")
	server.Close()

	_, err := client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{})
	var socketErr *aria2.SocketError
	if !errors.As(err, &socketErr) {
		t.Fatalf("expected SocketError, got %v", err)
	}
	var subErr *aria2.SubmissionError
	if !errors.As(err, &subErr) || subErr.Server != client.URL() {
		t.Fatalf("expected SubmissionError naming server, got %v", err)
	}
}

func TestAddURIDryRunSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := connectTo(t, server, "", "", aria2.WithDryRun(true))
	gid, err := client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{})
	if err != nil {
		t.Fatalf("AddURI: %v", err)
	}
	if gid != aria2.DryRunGID {
		t.Fatalf("expected placeholder gid, got %q", gid)
	}
	gid, err = client.AddURI(context.Background(), []string{"http://seedbox/a.torrent"}, aria2.Options{aria2.OptionGID: aria2.String("abcdef0123456789")})
	if err != nil {
		t.Fatalf("AddURI with gid: %v", err)
	}
	if gid != "abcdef0123456789" {
		t.Fatalf("expected gid option echoed, got %q", gid)
	}
	if hits.Load() != 0 {
		t.Fatalf("dry run contacted the daemon %d times", hits.Load())
	}
}

func TestAddURIRequiresSource(t *testing.T) {
	client, err := aria2.Connect("localhost", 6800, "", "", aria2.WithDryRun(true))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	_, err = client.AddURI(context.Background(), nil, aria2.Options{})
	var subErr *aria2.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "aria2.getVersion" {
			t.Errorf("unexpected method %q", req.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"version": "1.37.0", "enabledFeatures": []string{"BitTorrent", "Metalink"}},
		})
	}))
	defer server.Close()

	client := connectTo(t, server, "", "")
	version, err := client.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if version.Version != "1.37.0" || len(version.EnabledFeatures) != 2 {
		t.Fatalf("unexpected version %+v", version)
	}
}

func TestGetVersionWrapsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := connectTo(t, server, "", "")
	server.Close()

	_, err := client.GetVersion(context.Background())
	var connErr *aria2.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "could not connect to aria2 at ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	if aria2.Classify(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	fault := &aria2.RemoteFault{Code: 1, Message: "boom"}
	if got := aria2.Classify(fault); got != fault {
		t.Fatalf("classified errors should pass through, got %v", got)
	}
	var unknown *aria2.UnknownConnectionError
	if !errors.As(aria2.Classify(errors.New("odd")), &unknown) {
		t.Fatal("expected unknown connection error")
	}
	var socketErr *aria2.SocketError
	if !errors.As(aria2.Classify(context.DeadlineExceeded), &socketErr) {
		t.Fatal("expected deadline to classify as socket error")
	}
}
