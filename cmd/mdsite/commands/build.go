package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/linkverify"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
	"git.home.luguber.info/inful/mdsite/internal/source"
	"git.home.luguber.info/inful/mdsite/internal/state"
	"git.home.luguber.info/inful/mdsite/internal/workspace"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BasePath    string `arg:"" optional:"" name:"base-path" help:"URL path the site is served under, e.g. /repo/ (overrides site.base_path)"`
	Output      string `short:"o" help:"Output directory (overrides site.output_dir)" type:"path"`
	Incremental bool   `short:"i" help:"Only re-render pages whose source or template changed"`
	VerifyLinks bool   `name:"verify-links" help:"Check internal links in the generated site"`
	Strict      bool   `help:"Fail the build on broken links"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadedConfig()
	if err != nil {
		return err
	}
	if b.BasePath != "" {
		cfg.Site.BasePath = normalizeBasePath(b.BasePath)
	}
	if b.Output != "" {
		cfg.Site.OutputDir = b.Output
	}
	cfg.Build.Incremental = cfg.Build.Incremental || b.Incremental
	cfg.Build.VerifyLinks = cfg.Build.VerifyLinks || b.VerifyLinks || b.Strict
	if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := RunBuild(g.Context, cfg, BuildOptions{Strict: b.Strict})
	if report != nil {
		fmt.Println(report.Summary())
	}
	return err
}

// BuildOptions tunes RunBuild for its caller.
type BuildOptions struct {
	Recorder metrics.Recorder

	// KeepCheckout reuses the git checkout across builds.
	KeepCheckout bool

	// Strict turns broken links into a build failure.
	Strict bool
}

// RunBuild fetches remote content when configured, builds the site, persists the
// build report and optionally verifies links.
func RunBuild(ctx context.Context, cfg *config.Config, opts BuildOptions) (*site.Report, error) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	genOpts := []site.Option{site.WithRecorder(opts.Recorder)}

	if cfg.Source.Git != nil {
		ws := workspace.NewManager("")
		if opts.KeepCheckout || cfg.Build.Incremental {
			ws = workspace.NewPersistentManager(stateDir(cfg), "checkout")
		}
		if err := ws.Create(); err != nil {
			return nil, err
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Warn("Failed to clean up workspace", logfields.Error(err))
			}
		}()

		res, err := source.NewFetcher(*cfg.Source.Git, ws).WithRecorder(opts.Recorder).Fetch(ctx)
		if err != nil {
			return nil, err
		}
		genOpts = append(genOpts, site.WithContentDir(res.ContentDir), site.WithCommit(res.Commit))
	}

	if cfg.Build.Incremental {
		store, err := state.OpenSQLite(cfg.Build.StateDB)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		genOpts = append(genOpts, site.WithStore(store))
	}

	report, err := site.NewGenerator(cfg, genOpts...).Build(ctx)
	if report != nil {
		if perr := report.Persist(stateDir(cfg)); perr != nil {
			slog.Warn("Failed to write build report", logfields.Error(perr))
		}
	}
	if err != nil {
		return report, err
	}

	if cfg.Build.VerifyLinks {
		if err := verifyLinks(ctx, cfg, opts); err != nil {
			return report, err
		}
	}
	return report, nil
}

func verifyLinks(ctx context.Context, cfg *config.Config, opts BuildOptions) error {
	res, err := linkverify.NewVerifier(cfg.Site.OutputDir, cfg.Site.BasePath, cfg.Build.Workers).Verify(ctx)
	if err != nil {
		return err
	}
	opts.Recorder.AddBrokenLinks(len(res.Broken))
	slog.Info("Link verification finished",
		logfields.Pages(res.Pages),
		slog.Int("links", res.Links),
		slog.Int("broken", len(res.Broken)))
	if opts.Strict {
		return res.Err()
	}
	return nil
}
