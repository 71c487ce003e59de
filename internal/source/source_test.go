package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/workspace"
)

// seedRepo creates a local repository holding files and returns its path.
func seedRepo(t *testing.T, files map[string]string) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFiles(t, repo, dir, files)
	return dir, repo
}

func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	_, err = wt.Commit("update content", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func newWorkspace(t *testing.T) *workspace.Manager {
	t.Helper()
	ws := workspace.NewPersistentManager(t.TempDir(), "")
	require.NoError(t, ws.Create())
	return ws
}

func TestFetchClonesAndUpdates(t *testing.T) {
	seedDir, seed := seedRepo(t, map[string]string{
		"content/index.md": "# Home\n",
		"README.md":        "not content",
	})
	cfg := config.GitSource{URL: seedDir, Branch: "master", Subdir: "content"}
	f := NewFetcher(cfg, newWorkspace(t))

	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.FileExists(t, filepath.Join(res.ContentDir, "index.md"))
	assert.Equal(t, "content", filepath.Base(res.ContentDir))
	first := res.Commit
	require.Len(t, first, 40)

	commitFiles(t, seed, seedDir, map[string]string{"content/about.md": "# About\n"})

	res, err = f.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.NotEqual(t, first, res.Commit)
	assert.FileExists(t, filepath.Join(res.ContentDir, "about.md"))
}

func TestFetchRepositoryRoot(t *testing.T) {
	seedDir, _ := seedRepo(t, map[string]string{"index.md": "# Home\n"})
	res, err := NewFetcher(config.GitSource{URL: seedDir}, newWorkspace(t)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.RepoDir, res.ContentDir)
}

func TestFetchMissingSubdir(t *testing.T) {
	seedDir, _ := seedRepo(t, map[string]string{"index.md": "# Home\n"})
	_, err := NewFetcher(config.GitSource{URL: seedDir, Subdir: "docs"}, newWorkspace(t)).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestFetchRequiresWorkspace(t *testing.T) {
	_, err := NewFetcher(config.GitSource{URL: "x"}, workspace.NewManager(t.TempDir())).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryInternal))
}

func TestFetchBadRemote(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nothing-here")
	_, err := NewFetcher(config.GitSource{URL: missing}, newWorkspace(t)).Fetch(context.Background())
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Contains(t, []errors.ErrorCategory{errors.CategoryGit, errors.CategoryNotFound}, ce.Category())
}
