package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// apiCall is one request seen by the fake HubSpot server.
type apiCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeAPI is an httptest server answering by "METHOD path" route.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	routes map[string][]fakeReply
	calls  []apiCall
}

type fakeReply struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string][]fakeReply{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// on queues a reply for "METHOD path". The last reply for a route repeats.
func (f *fakeAPI) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.routes[key] = append(f.routes[key], fakeReply{status: status, body: body})
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	key := r.Method + " " + r.URL.Path
	replies := f.routes[key]
	var rep fakeReply
	switch len(replies) {
	case 0:
		rep = fakeReply{status: http.StatusNotFound, body: `{"status":"error","message":"no route ` + key + `"}`}
	case 1:
		rep = replies[0]
	default:
		rep = replies[0]
		f.routes[key] = replies[1:]
	}
	f.mu.Unlock()

	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

// testEnv is an isolated config and data directory pointed at a fake API.
type testEnv struct {
	t       *testing.T
	API     *fakeAPI
	Config  string
	DataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, k := range []string{"HUBCONTACTS_ACCESS_TOKEN", "HUBCONTACTS_BASE_URL", "HUBCONTACTS_REFRESH_TOKEN", "HUBCONTACTS_DATA_DIR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	api := newFakeAPI(t)
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")
	dataDir := filepath.Join(tempDir, "data")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "base_url: " + api.server.URL + "\naccess_token: test-token\nrate_limit: 0\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &testEnv{t: t, API: api, Config: configDir, DataDir: dataDir}
}

// cmdResult holds the outcome of one CLI invocation.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	all := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), all, &stdout, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("hubcontacts %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return out
}
