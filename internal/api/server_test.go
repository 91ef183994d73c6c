package api

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/metrics"
	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/dgallion1/docnav/internal/pipeline"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

const testKey = "secret"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer returns a server over an orchestrator. Workers only run when
// start is true, so submitted jobs otherwise stay queued.
func newTestServer(t *testing.T, start bool) *Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.APIKey = testKey
	cfg.OutputDir = t.TempDir()
	cfg.SettleDelay = 0
	cfg.ReplayViewport = 10
	cfg.MaxUploadBytes = 1024

	orch := pipeline.NewOrchestrator(cfg, nil, metrics.NewRunStats(time.Hour), quietLogger())
	if start {
		orch.Start(t.Context())
		t.Cleanup(orch.Stop)
	}
	return NewServer(orch, quietLogger(), cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content, title string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	if title != "" {
		mw.WriteField("title", title)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/outline", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/runs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestOutlineUploadToTree(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, uploadRequest(t, "toc.md", "- [A](a.html)\n  - [B](b.html)\n- [C](c.html)\n", "Guide"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
		TreeURL string `json:"tree_url"`
	}
	decode(t, rec, &accepted)

	deadline := time.Now().Add(5 * time.Second)
	var snap pipeline.JobSnapshot
	for {
		rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		decode(t, rec, &snap)
		if snap.Status.Finished() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.TreeURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("tree: expected 200, got %d", rec.Code)
	}
	var tree navtree.TreeNode
	decode(t, rec, &tree)
	if tree.Title != "Guide" {
		t.Errorf("expected title override, got %q", tree.Title)
	}
	var titles []string
	for _, c := range tree.Children {
		titles = append(titles, c.Title)
	}
	if diff := cmp.Diff([]string{"A", "C"}, titles); diff != "" {
		t.Errorf("top-level titles mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/runs", nil))
	var stats struct {
		Runs metrics.StatsSnapshot `json:"runs"`
	}
	decode(t, rec, &stats)
	if stats.Runs.Count != 1 {
		t.Errorf("expected 1 recorded run, got %d", stats.Runs.Count)
	}
}

func TestOutlineRejects(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{"unsupported extension", "notes.exe", "x", http.StatusBadRequest},
		{"too large", "big.txt", strings.Repeat("a\n", 1024), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, uploadRequest(t, tt.filename, tt.content, ""))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestScrape(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"defaults", "", http.StatusAccepted},
		{"override", `{"url":"https://developer.apple.com/documentation/uikit","max_cycles":5}`, http.StatusAccepted},
		{"relative url", `{"url":"/documentation/uikit"}`, http.StatusBadRequest},
		{"negative cycles", `{"max_cycles":-1}`, http.StatusBadRequest},
		{"unknown field", `{"depth":3}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(tt.body))
			rec := do(t, s, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTreeBeforeFinish(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/scrape", nil))
	var accepted struct {
		TreeURL string `json:"tree_url"`
	}
	decode(t, rec, &accepted)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, accepted.TreeURL, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for queued job, got %d", rec.Code)
	}
}

func TestUnknownJob(t *testing.T) {
	s := newTestServer(t, false)
	for _, path := range []string{"/api/jobs/nope/status", "/api/jobs/nope/tree"} {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestQueueFullIsUnavailable(t *testing.T) {
	s := newTestServer(t, false)
	s.cfg.MaxQueueSize = 1
	s.orchestrator = pipeline.NewOrchestrator(s.cfg, nil, metrics.NewRunStats(time.Hour), quietLogger())

	if rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/scrape", nil)); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/scrape", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"toc.md", "toc.md"},
		{"../../etc/passwd", "passwd"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
