package site

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/state"
)

const (
	markdownExt = ".md"
	htmlExt     = ".html"
	sitemapFile = "sitemap.xml"
)

// Generator builds a site from a configuration.
type Generator struct {
	cfg        *config.Config
	contentDir string
	commit     string
	store      state.Store
	recorder   metrics.Recorder
	newID      func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithStore enables incremental bookkeeping in s.
func WithStore(s state.Store) Option {
	return func(g *Generator) { g.store = s }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithContentDir overrides site.content_dir, e.g. with a git checkout.
func WithContentDir(dir string) Option {
	return func(g *Generator) { g.contentDir = dir }
}

// WithCommit records the content commit the build was made from.
func WithCommit(commit string) Option {
	return func(g *Generator) { g.commit = commit }
}

// NewGenerator returns a generator for cfg. Paths in cfg are used as given.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:        cfg,
		contentDir: cfg.Site.ContentDir,
		recorder:   metrics.NoopRecorder{},
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePage renders the Markdown file src through the configured template
// and writes the page to dst.
func (g *Generator) GeneratePage(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tpl, err := g.loadTemplate()
	if err != nil {
		return err
	}
	body, err := os.ReadFile(src)
	if err != nil {
		return fsError(err, "failed to read page", src)
	}
	slog.Info("Generating page", logfields.File(src), logfields.Output(dst))
	page, err := RenderPage(tpl, string(body), g.cfg.Site.BasePath)
	if err != nil {
		return withFile(err, src)
	}
	return writeFile(dst, []byte(page))
}

// Build runs a complete build. The returned report is non-nil even on failure.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	report := newReport(g.newID(), g.cfg.Build.Incremental)
	logger := slog.With(logfields.BuildID(report.BuildID))
	logger.Info("Build started",
		logfields.Path(g.contentDir),
		logfields.Output(g.cfg.Site.OutputDir),
		slog.Bool("incremental", report.Incremental))

	err := g.build(ctx, report, logger)
	report.End = time.Now()

	switch {
	case err == nil:
		report.Outcome = metrics.BuildSuccess
	case ctx.Err() != nil:
		report.Outcome = metrics.BuildCanceled
		err = errors.RuntimeError("build canceled").WithCause(ctx.Err()).
			WithContext(logfields.KeyBuildID, report.BuildID).
			Build()
	default:
		report.Outcome = metrics.BuildFailed
	}
	if err != nil {
		report.Error = err.Error()
	}

	g.recorder.ObserveBuildDuration(report.Duration())
	g.recorder.IncBuildOutcome(report.Outcome)
	g.recordBuild(report, logger)

	if err != nil {
		logger.Error("Build failed", logfields.Error(err), logfields.DurationMS(float64(report.Duration().Milliseconds())))
		return report, err
	}
	logger.Info("Build finished",
		logfields.Pages(report.Rendered),
		logfields.Skipped(report.Skipped),
		slog.Int("copied", report.Copied),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

func (g *Generator) build(ctx context.Context, report *Report, logger *slog.Logger) error {
	tpl, err := g.loadTemplate()
	if err != nil {
		return err
	}
	digest := state.TemplateDigest(tpl, g.cfg.Site.BasePath)
	full := g.needsFullBuild(ctx, logger)

	if err := g.stage(report, StageCopyStatic, func() error {
		n, err := g.copyStatic(logger)
		report.StaticFiles = n
		return err
	}); err != nil {
		return err
	}

	var tasks []task
	if err := g.stage(report, StageDiscover, func() error {
		tasks, err = discover(g.contentDir)
		return err
	}); err != nil {
		return err
	}

	if err := g.stage(report, StageRender, func() error {
		return g.render(ctx, report, tasks, tpl, digest, full)
	}); err != nil {
		return err
	}

	if err := g.pruneState(ctx, tasks, logger); err != nil {
		return err
	}
	if err := g.sweepOutput(tasks, logger); err != nil {
		return err
	}

	if g.cfg.Build.Sitemap {
		if err := g.stage(report, StageSitemap, func() error {
			xml := buildSitemap(g.cfg.Site.BaseURL, g.cfg.Site.BasePath, report.Pages, report.Start)
			return writeFile(filepath.Join(g.cfg.Site.OutputDir, sitemapFile), []byte(xml))
		}); err != nil {
			return err
		}
	}
	return nil
}

// stage times fn and records its outcome.
func (g *Generator) stage(report *Report, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	report.StageDurations[name] = d
	g.recorder.ObserveStageDuration(name, d)

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultCanceled
	default:
		result = metrics.ResultFatal
	}
	g.recorder.IncStageResult(name, result)
	slog.Debug("Stage finished", logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds())/1000), slog.String("result", string(result)))
	return err
}

// needsFullBuild reports whether incremental skipping must be disabled for this build.
func (g *Generator) needsFullBuild(ctx context.Context, logger *slog.Logger) bool {
	if !g.cfg.Build.Incremental || g.store == nil {
		return true
	}
	last, ok, err := g.store.LastBuild(ctx)
	if err != nil {
		logger.Warn("Cannot read previous build, rendering everything", logfields.Error(err))
		return true
	}
	if ok && last.ConfigSnapshot != g.cfg.Snapshot() {
		logger.Info("Configuration changed since last build, rendering everything")
		return true
	}
	return false
}

func (g *Generator) copyStatic(logger *slog.Logger) (int, error) {
	clean := !g.cfg.Build.Incremental
	if _, err := os.Stat(g.cfg.Site.StaticDir); os.IsNotExist(err) {
		logger.Warn("No static directory, skipping static copy", logfields.Path(g.cfg.Site.StaticDir))
		if clean {
			if err := os.RemoveAll(g.cfg.Site.OutputDir); err != nil {
				return 0, fsError(err, "failed to clean output directory", g.cfg.Site.OutputDir)
			}
		}
		if err := os.MkdirAll(g.cfg.Site.OutputDir, 0o755); err != nil {
			return 0, fsError(err, "failed to create output directory", g.cfg.Site.OutputDir)
		}
		return 0, nil
	}
	return CopyStatic(g.cfg.Site.StaticDir, g.cfg.Site.OutputDir, clean)
}

type task struct {
	src  string // absolute source path
	rel  string // content-relative, slash separated
	out  string // output-relative, slash separated
	page bool
}

func discover(contentDir string) ([]task, error) {
	info, err := os.Stat(contentDir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFoundError("content directory does not exist").
			WithContext("path", contentDir).
			Build()
	}
	var tasks []task
	err = filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "failed to walk content directory", path)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(contentDir, path)
		if err != nil {
			return fsError(err, "failed to resolve content path", path)
		}
		rel = filepath.ToSlash(rel)
		t := task{src: path, rel: rel, out: rel}
		if strings.EqualFold(filepath.Ext(rel), markdownExt) {
			t.page = true
			t.out = rel[:len(rel)-len(markdownExt)] + htmlExt
		}
		tasks = append(tasks, t)
		return nil
	})
	return tasks, err
}

func (g *Generator) render(ctx context.Context, report *Report, tasks []task, tpl, digest string, full bool) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.cfg.Build.Workers, 1))

	var mu sync.Mutex
	pages := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			result, err := g.process(gctx, t, tpl, digest, report.BuildID, full)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch result {
			case metrics.PageRendered:
				report.Rendered++
			case metrics.PageSkipped:
				report.Skipped++
			case metrics.PageCopied:
				report.Copied++
			}
			if t.page {
				pages = append(pages, t.out)
			}
			return nil
		})
	}
	err := eg.Wait()
	sort.Strings(pages)
	report.Pages = pages
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (g *Generator) process(ctx context.Context, t task, tpl, digest, buildID string, full bool) (metrics.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	dst := filepath.Join(g.cfg.Site.OutputDir, filepath.FromSlash(t.out))

	if !t.page {
		if err := copyFile(t.src, dst); err != nil {
			g.recorder.IncPageResult(metrics.PageFailed)
			return "", err
		}
		g.recorder.IncPageResult(metrics.PageCopied)
		return metrics.PageCopied, nil
	}

	body, err := os.ReadFile(t.src)
	if err != nil {
		g.recorder.IncPageResult(metrics.PageFailed)
		return "", fsError(err, "failed to read page", t.src)
	}
	fp := state.Fingerprint(digest, body)

	if !full {
		rec, ok, err := g.store.Page(ctx, t.rel)
		if err != nil {
			return "", err
		}
		if ok && rec.Fingerprint == fp && rec.Output == t.out && fileExists(dst) {
			slog.Debug("Page unchanged", logfields.File(t.rel))
			g.recorder.IncPageResult(metrics.PageSkipped)
			return metrics.PageSkipped, nil
		}
	}

	page, err := RenderPage(tpl, string(body), g.cfg.Site.BasePath)
	if err != nil {
		g.recorder.IncPageResult(metrics.PageFailed)
		return "", withFile(err, t.rel)
	}
	if err := writeFile(dst, []byte(page)); err != nil {
		g.recorder.IncPageResult(metrics.PageFailed)
		return "", err
	}
	if g.store != nil {
		if err := g.store.PutPage(ctx, state.PageRecord{Path: t.rel, Output: t.out, Fingerprint: fp, BuildID: buildID}); err != nil {
			return "", err
		}
	}

	g.recorder.ObservePageDuration(time.Since(start))
	g.recorder.IncPageResult(metrics.PageRendered)
	slog.Debug("Generated page", logfields.File(t.rel), logfields.Output(t.out), logfields.Since(start))
	return metrics.PageRendered, nil
}

// pruneState forgets pages whose source disappeared and removes their stale output.
func (g *Generator) pruneState(ctx context.Context, tasks []task, logger *slog.Logger) error {
	if g.store == nil {
		return nil
	}
	keep := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.page {
			keep = append(keep, t.rel)
		}
	}
	removed, err := g.store.PrunePages(ctx, keep)
	if err != nil {
		return err
	}
	for _, rec := range removed {
		out := filepath.Join(g.cfg.Site.OutputDir, filepath.FromSlash(rec.Output))
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove stale page", logfields.Output(rec.Output), logfields.Error(err))
			continue
		}
		logger.Debug("Removed stale page", logfields.File(rec.Path), logfields.Output(rec.Output))
	}
	return nil
}

// sweepOutput removes output files that neither the static tree nor the content
// tree produces any more. Full builds start from an empty output directory.
func (g *Generator) sweepOutput(tasks []task, logger *slog.Logger) error {
	if !g.cfg.Build.Incremental {
		return nil
	}
	keep, err := listFiles(g.cfg.Site.StaticDir)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		keep[t.out] = struct{}{}
	}
	if g.cfg.Build.Sitemap {
		keep[sitemapFile] = struct{}{}
	}
	removed, err := removeStale(g.cfg.Site.OutputDir, keep, filepath.Clean(filepath.Dir(g.cfg.Build.StateDB)))
	for _, rel := range removed {
		logger.Debug("Removed stale output", logfields.Output(rel))
	}
	if len(removed) > 0 {
		logger.Info("Removed stale output files", slog.Int("removed", len(removed)))
	}
	return err
}

func (g *Generator) recordBuild(report *Report, logger *slog.Logger) {
	if g.store == nil {
		return
	}
	// recorded even when the build context was canceled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := g.store.RecordBuild(ctx, state.BuildRecord{
		ID:             report.BuildID,
		StartedAt:      report.Start,
		Duration:       report.Duration(),
		Rendered:       report.Rendered,
		Copied:         report.Copied,
		Skipped:        report.Skipped,
		Outcome:        report.Outcome,
		ConfigSnapshot: g.cfg.Snapshot(),
		Commit:         g.commit,
		Error:          report.Error,
	})
	if err != nil {
		logger.Warn("Failed to record build", logfields.Error(err))
	}
}

func (g *Generator) loadTemplate() (string, error) {
	data, err := os.ReadFile(g.cfg.Site.Template)
	if err != nil {
		return "", errors.TemplateError("failed to read page template").
			WithCause(err).
			WithContext("path", g.cfg.Site.Template).
			Build()
	}
	return string(data), nil
}

// withFile attaches the offending source file to err.
func withFile(err error, file string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext(logfields.KeyFile, file)
	}
	return errors.WrapError(err, errors.CategoryRender, "failed to render page").
		WithContext(logfields.KeyFile, file).
		Build()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
