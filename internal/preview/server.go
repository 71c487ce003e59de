package preview

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// BuildFunc builds the site into the configured output directory.
type BuildFunc func(ctx context.Context) error

// Server is the local preview server.
type Server struct {
	cfg      *config.Config
	build    BuildFunc
	registry *prom.Registry
	errPages *errors.HTTPErrorAdapter
	status   buildStatus
	addr     chan string
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry serves /metrics from reg instead of the default registry.
func WithRegistry(reg *prom.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// NewServer returns a preview server that calls build for every rebuild.
func NewServer(cfg *config.Config, build BuildFunc, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		build:    build,
		errPages: errors.NewHTTPErrorAdapter(slog.Default()),
		addr:     make(chan string, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler serves the output directory under the site base path, the error page
// while the last build is failing, and optionally Prometheus metrics.
// /healthz reports the last build result as JSON.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthz)
	if s.cfg.Serve.Metrics {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	files := http.FileServer(http.Dir(s.cfg.Site.OutputDir))
	prefix := strings.TrimSuffix(s.cfg.Site.BasePath, "/")
	if prefix != "" {
		files = http.StripPrefix(prefix, files)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if err := s.status.err(); err != nil {
			s.errPages.WriteErrorPage(w, r, err)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.status.err(); err != nil {
		s.errPages.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Addr returns the listen address once the server is up.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case a := <-s.addr:
		s.addr <- a
		return a, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run builds the site, serves it and rebuilds on change until ctx is done.
// A failing build does not stop the server.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	ws := watchSet{
		trees:    []string{s.cfg.Site.ContentDir, s.cfg.Site.StaticDir},
		template: s.cfg.Site.Template,
	}
	watcher, err := newWatcher(ws)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	deb := newDebouncer(s.cfg.Serve.DebounceDuration())
	defer deb.stop()

	if interval := s.cfg.Serve.PollDuration(); interval > 0 {
		poller, err := newPoller(interval, deb.fire)
		if err != nil {
			return err
		}
		poller.Start()
		defer func() { _ = poller.Shutdown() }()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Serve.Port))
	if err != nil {
		return errors.RuntimeError("failed to listen").WithCause(err).
			WithContext("port", s.cfg.Serve.Port).
			Build()
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	addr := ln.Addr().String()
	s.addr <- addr
	slog.Info("Preview server listening",
		logfields.URL(fmt.Sprintf("http://%s%s", addr, s.cfg.Site.BasePath)))

	go s.rebuildLoop(ctx, deb.C)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("HTTP server shutdown error", logfields.Error(err))
			}
			return nil
		case err := <-serveErr:
			if stderrors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errors.RuntimeError("preview server stopped").WithCause(err).Build()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if handleEvent(watcher, ws, ev) {
				deb.trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop runs one build per request. Requests arriving during a build
// collapse into a single follow-up build.
func (s *Server) rebuildLoop(ctx context.Context, requests <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			slog.Info("Change detected; rebuilding site")
			s.rebuild(ctx)
		}
	}
}

func (s *Server) rebuild(ctx context.Context) {
	start := time.Now()
	err := s.build(ctx)
	if ctx.Err() != nil {
		return
	}
	s.status.record(err)
	if err != nil {
		slog.Warn("Build failed",
			logfields.Error(err),
			slog.String("category", string(errors.GetCategory(err))),
			logfields.Since(start))
		return
	}
	slog.Info("Build finished", logfields.Since(start))
}
