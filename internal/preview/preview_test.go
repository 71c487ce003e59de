package preview

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.ResolvePaths(root)
	cfg.Serve.Port = 0
	cfg.Serve.Debounce = "20ms"
	for _, dir := range []string{cfg.Site.ContentDir, cfg.Site.StaticDir, cfg.Site.OutputDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(cfg.Site.Template, []byte("{{ Content }}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Site.OutputDir, "index.html"), []byte("<p>home</p>"), 0o644))
	return cfg
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandlerServesOutput(t *testing.T) {
	cfg := testConfig(t)
	s := NewServer(cfg, func(context.Context) error { return nil })

	code, body := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<p>home</p>", body)

	code, _ = get(t, s.Handler(), "/missing.html")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandlerStripsBasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.BasePath = "/docs/"
	s := NewServer(cfg, func(context.Context) error { return nil })

	code, body := get(t, s.Handler(), "/docs/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<p>home</p>", body)
}

func TestHandlerShowsErrorPageAfterFailedBuild(t *testing.T) {
	cfg := testConfig(t)
	s := NewServer(cfg, nil)
	s.status.record(errors.SyntaxError("unmatched delimiter").WithContext("delimiter", "**").Build())

	code, body := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "Build failed")
	assert.Contains(t, body, "unmatched delimiter")

	s.status.record(nil)
	code, _ = get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, code)
}

func TestHandlerHealthz(t *testing.T) {
	tests := []struct {
		name     string
		buildErr error
		code     int
		contains []string
	}{
		{name: "healthy", code: http.StatusOK, contains: []string{`{"status":"ok"}`}},
		{
			name:     "syntax error",
			buildErr: errors.SyntaxError("unmatched delimiter").WithContext("delimiter", "**").Build(),
			code:     http.StatusUnprocessableEntity,
			contains: []string{`"error":"unmatched delimiter"`, `"code":"syntax"`, `"delimiter":"**"`},
		},
		{
			name:     "template read failure",
			buildErr: errors.TemplateError("failed to read page template").WithCause(os.ErrNotExist).Build(),
			code:     http.StatusUnprocessableEntity,
			contains: []string{`"code":"template"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(testConfig(t), nil)
			s.status.record(tt.buildErr)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestHandlerMetrics(t *testing.T) {
	cfg := testConfig(t)
	reg := prom.NewRegistry()
	counter := prom.NewCounter(prom.CounterOpts{Name: "preview_test_total"})
	reg.MustRegister(counter)
	counter.Inc()

	s := NewServer(cfg, nil, WithRegistry(reg))
	code, _ := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)

	cfg.Serve.Metrics = true
	code, body := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "preview_test_total 1")
}

func TestShouldIgnoreEvent(t *testing.T) {
	assert.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	assert.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	assert.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	assert.True(t, shouldIgnoreEvent("/tmp/page.md~"))
	assert.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestWatchSetRelevant(t *testing.T) {
	ws := watchSet{
		trees:    []string{"/site/content", "/site/static"},
		template: "/site/template.html",
	}
	assert.True(t, ws.relevant("/site/content/a/b.md"))
	assert.True(t, ws.relevant("/site/static/logo.png"))
	assert.True(t, ws.relevant("/site/template.html"))
	assert.False(t, ws.relevant("/site/docs/index.html"))
	assert.False(t, ws.relevant("/site/content-old/x.md"))
	assert.False(t, ws.relevant("/site/content/.x.md.swp"))
}

func TestHandleEventSkipsChmod(t *testing.T) {
	ws := watchSet{trees: []string{"/site/content"}}
	assert.False(t, handleEvent(nil, ws, fsnotify.Event{Name: "/site/content/a.md", Op: fsnotify.Chmod}))
	assert.True(t, handleEvent(nil, ws, fsnotify.Event{Name: "/site/content/a.md", Op: fsnotify.Write}))
	assert.False(t, handleEvent(nil, ws, fsnotify.Event{Name: "/elsewhere/a.md", Op: fsnotify.Write}))
}

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		d.trigger()
	}
	select {
	case <-d.C:
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
	select {
	case <-d.C:
		t.Fatal("debouncer fired twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func startServer(t *testing.T, cfg *config.Config, build BuildFunc) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()
	s := NewServer(cfg, build)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	_, err := s.Addr(addrCtx)
	require.NoError(t, err)
	return s, cancel, done
}

func TestRunRebuildsOnChange(t *testing.T) {
	cfg := testConfig(t)
	var builds atomic.Int32
	s, cancel, done := startServer(t, cfg, func(context.Context) error {
		builds.Add(1)
		return nil
	})
	assert.Equal(t, int32(1), builds.Load())

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Site.ContentDir, "new.md"), []byte("# New"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, s.status.err())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunPollsAndKeepsServingAfterFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Serve.PollInterval = "30ms"
	var builds atomic.Int32
	s, cancel, done := startServer(t, cfg, func(context.Context) error {
		if builds.Add(1) > 1 {
			return stderrors.New("boom")
		}
		return nil
	})
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return s.status.count() >= 3 }, 5*time.Second, 10*time.Millisecond)
	require.Error(t, s.status.err())

	addr, err := s.Addr(context.Background())
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	resp, err := http.Get("http://127.0.0.1:" + port + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
