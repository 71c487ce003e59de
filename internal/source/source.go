// Package source fetches site content from a remote git repository.
package source

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/workspace"
)

const checkoutDir = "repo"

// Result describes a fetched checkout.
type Result struct {
	RepoDir    string
	ContentDir string
	Commit     string
	Updated    bool // an existing checkout was fast-forwarded instead of cloned
}

// Fetcher clones or updates the configured repository inside a workspace.
type Fetcher struct {
	cfg      config.GitSource
	ws       *workspace.Manager
	recorder metrics.Recorder
}

// NewFetcher returns a fetcher for cfg. The workspace must already be created.
func NewFetcher(cfg config.GitSource, ws *workspace.Manager) *Fetcher {
	return &Fetcher{cfg: cfg, ws: ws, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder.
func (f *Fetcher) WithRecorder(r metrics.Recorder) *Fetcher {
	if r != nil {
		f.recorder = r
	}
	return f
}

// Fetch makes the workspace checkout match the remote branch and returns the
// content directory inside it.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	if f.ws.Path() == "" {
		return nil, errors.InternalError("workspace not created").Build()
	}
	repoDir := filepath.Join(f.ws.Path(), checkoutDir)
	start := time.Now()

	var (
		res *Result
		err error
	)
	if _, statErr := os.Stat(filepath.Join(repoDir, ".git")); statErr == nil {
		res, err = f.update(ctx, repoDir)
	} else {
		res, err = f.clone(ctx, repoDir)
	}
	f.recorder.ObserveCloneDuration(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	res.ContentDir = filepath.Join(repoDir, filepath.Clean("/" + f.cfg.Subdir)[1:])
	info, err := os.Stat(res.ContentDir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFoundError("content directory not found in repository").
			WithContext("url", f.cfg.URL).
			WithContext("subdir", f.cfg.Subdir).
			Build()
	}
	return res, nil
}

func (f *Fetcher) clone(ctx context.Context, repoDir string) (*Result, error) {
	slog.Info("Cloning content repository", logfields.URL(f.cfg.URL), logfields.Branch(f.cfg.Branch), logfields.Path(repoDir))
	if err := os.RemoveAll(repoDir); err != nil {
		return nil, errors.FileSystemError("failed to remove stale checkout").WithCause(err).
			WithContext("path", repoDir).
			Build()
	}

	opts := &git.CloneOptions{URL: f.cfg.URL, Auth: f.auth(), Tags: git.NoTags}
	if f.cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(f.cfg.Branch)
		opts.SingleBranch = true
	}
	if f.cfg.Depth > 0 {
		opts.Depth = f.cfg.Depth
	}
	repo, err := git.PlainCloneContext(ctx, repoDir, false, opts)
	if err != nil {
		return nil, classifyGitError("clone", f.cfg.URL, err)
	}
	commit := headCommit(repo)
	slog.Info("Content repository cloned", logfields.URL(f.cfg.URL), slog.String("commit", shortHash(commit)))
	return &Result{RepoDir: repoDir, Commit: commit}, nil
}

func (f *Fetcher) update(ctx context.Context, repoDir string) (*Result, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		// unreadable checkout: start over
		slog.Warn("Existing checkout unusable, recloning", logfields.Path(repoDir), logfields.Error(err))
		return f.clone(ctx, repoDir)
	}

	branch := f.cfg.Branch
	if branch == "" {
		head, herr := repo.Head()
		if herr != nil || !head.Name().IsBranch() {
			return f.clone(ctx, repoDir)
		}
		branch = head.Name().Short()
	}

	fetch := &git.FetchOptions{
		RemoteName: "origin",
		Auth:       f.auth(),
		Tags:       git.NoTags,
		RefSpecs:   []ggitcfg.RefSpec{ggitcfg.RefSpec("+refs/heads/" + branch + ":refs/remotes/origin/" + branch)},
	}
	if f.cfg.Depth > 0 {
		fetch.Depth = f.cfg.Depth
	}
	if err := repo.FetchContext(ctx, fetch); err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, classifyGitError("fetch", f.cfg.URL, err)
	}

	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return nil, errors.GitError("remote branch not found").WithCause(err).
			WithContext("url", f.cfg.URL).
			WithContext("branch", branch).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.GitError("failed to open worktree").WithCause(err).Build()
	}
	before := headCommit(repo)
	if err := wt.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
		return nil, errors.GitError("failed to reset checkout").WithCause(err).
			WithContext("branch", branch).
			Build()
	}
	commit := remote.Hash().String()
	if before != commit {
		slog.Info("Content repository updated", logfields.URL(f.cfg.URL), logfields.Branch(branch),
			slog.String("from", shortHash(before)), slog.String("to", shortHash(commit)))
	}
	return &Result{RepoDir: repoDir, Commit: commit, Updated: true}, nil
}

func (f *Fetcher) auth() transport.AuthMethod {
	if f.cfg.Token == "" {
		return nil
	}
	// token-based HTTPS auth; the username is ignored by the common forges
	return &githttp.BasicAuth{Username: "mdsite", Password: f.cfg.Token}
}

func headCommit(repo *git.Repository) string {
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// classifyGitError maps go-git failures onto error categories so the CLI can
// pick an exit code and the preview server can decide whether to retry.
func classifyGitError(op, url string, err error) error {
	var b *errors.ErrorBuilder
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
		b = errors.GitError("authentication failed").WithCause(err).UserAction()
	case stderrors.Is(err, transport.ErrRepositoryNotFound):
		b = errors.WrapError(err, errors.CategoryNotFound, "repository not found").UserAction()
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		b = errors.RuntimeError("git operation canceled").WithCause(err)
	case strings.Contains(strings.ToLower(err.Error()), "couldn't find remote ref"):
		b = errors.WrapError(err, errors.CategoryNotFound, "branch not found").UserAction()
	default:
		b = errors.GitError("git " + op + " failed").WithCause(err)
	}
	return b.WithContext("op", op).WithContext("url", url).Build()
}
