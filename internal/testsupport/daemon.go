package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"aria2bt/internal/aria2"
)

// RPCCall is one JSON-RPC request received by a FakeDaemon. For addUri,
// URIs and Options are decoded from the params (the token, if any, is split
// out into Token).
type RPCCall struct {
	Method  string
	Token   string
	URIs    []string
	Options map[string]any
}

type fault struct {
	code    int
	message string
}

// FakeDaemon is an httptest stand-in for the aria2 JSON-RPC endpoint.
type FakeDaemon struct {
	Server *httptest.Server

	mu     sync.Mutex
	calls  []RPCCall
	faults []fault
	next   int
}

// NewFakeDaemon starts a fake daemon that accepts every addUri call and
// answers with sequential GIDs. It is closed on test cleanup.
func NewFakeDaemon(t testing.TB) *FakeDaemon {
	t.Helper()
	d := &FakeDaemon{}
	d.Server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.Server.Close)
	return d
}

// Host returns the listener host.
func (d *FakeDaemon) Host() string {
	parsed, _ := url.Parse(d.Server.URL)
	return parsed.Hostname()
}

// Port returns the listener port.
func (d *FakeDaemon) Port() int {
	parsed, _ := url.Parse(d.Server.URL)
	port, _ := strconv.Atoi(parsed.Port())
	return port
}

// Client connects an aria2 client to the fake daemon.
func (d *FakeDaemon) Client(t testing.TB, opts ...aria2.Option) *aria2.Client {
	t.Helper()
	client, err := aria2.Connect(d.Host(), d.Port(), "", "", opts...)
	if err != nil {
		t.Fatalf("connect fake daemon: %v", err)
	}
	return client
}

// FailNext queues a JSON-RPC fault for the next addUri call.
func (d *FakeDaemon) FailNext(code int, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = append(d.faults, fault{code: code, message: message})
}

// Calls returns the requests received so far.
func (d *FakeDaemon) Calls() []RPCCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]RPCCall, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *FakeDaemon) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	call := RPCCall{Method: req.Method}
	params := req.Params
	if len(params) > 0 {
		var token string
		if json.Unmarshal(params[0], &token) == nil {
			call.Token = token
			params = params[1:]
		}
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params[0], &call.URIs)
	}
	if len(params) > 1 {
		_ = json.Unmarshal(params[1], &call.Options)
	}

	d.mu.Lock()
	d.calls = append(d.calls, call)
	var queued *fault
	if req.Method == "aria2.addUri" && len(d.faults) > 0 {
		queued = &d.faults[0]
		d.faults = d.faults[1:]
	}
	d.next++
	seq := d.next
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	response := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case queued != nil:
		w.WriteHeader(http.StatusBadRequest)
		response["error"] = map[string]any{"code": queued.code, "message": queued.message}
	case req.Method == "aria2.getVersion":
		response["result"] = map[string]any{"version": "1.37.0", "enabledFeatures": []string{"BitTorrent"}}
	case req.Method == "aria2.addUri":
		response["result"] = fmt.Sprintf("%016x", seq)
	default:
		response["error"] = map[string]any{"code": 1, "message": "No such method: " + req.Method}
	}
	_ = json.NewEncoder(w).Encode(response)
}
