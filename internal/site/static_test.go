package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// writeTree creates files (slash-separated relative paths) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopyStatic(t *testing.T) {
	src := filepath.Join(t.TempDir(), "static")
	dst := filepath.Join(t.TempDir(), "docs")
	writeTree(t, src, map[string]string{
		"index.css":          "body{}",
		"images/tolkien.png": "png",
		"a/b/c/deep.txt":     "deep",
	})
	writeTree(t, dst, map[string]string{"stale.html": "old"})

	n, err := CopyStatic(src, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "body{}", readFile(t, filepath.Join(dst, "index.css")))
	assert.Equal(t, "deep", readFile(t, filepath.Join(dst, "a", "b", "c", "deep.txt")))
	assert.NoFileExists(t, filepath.Join(dst, "stale.html"))
}

func TestCopyStaticKeepsOutputWithoutClean(t *testing.T) {
	src := filepath.Join(t.TempDir(), "static")
	dst := filepath.Join(t.TempDir(), "docs")
	writeTree(t, src, map[string]string{"index.css": "new"})
	writeTree(t, dst, map[string]string{"index.css": "old", "page.html": "kept"})

	_, err := CopyStatic(src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, "new", readFile(t, filepath.Join(dst, "index.css")))
	assert.FileExists(t, filepath.Join(dst, "page.html"))
}

func TestCopyStaticMissingSource(t *testing.T) {
	_, err := CopyStatic(filepath.Join(t.TempDir(), "missing"), t.TempDir(), true)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.html":       "keep",
		"old/page.html":    "stale",
		"img/logo.png":     "keep",
		"img/gone.png":     "stale",
		".mdsite/state.db": "skip",
	})
	keep := map[string]struct{}{"index.html": {}, "img/logo.png": {}}

	removed, err := removeStale(dir, keep, filepath.Join(dir, ".mdsite"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"old/page.html", "img/gone.png"}, removed)
	assert.FileExists(t, filepath.Join(dir, "index.html"))
	assert.FileExists(t, filepath.Join(dir, "img", "logo.png"))
	assert.FileExists(t, filepath.Join(dir, ".mdsite", "state.db"))
	assert.NoDirExists(t, filepath.Join(dir, "old"))
	assert.DirExists(t, dir)
}

func TestListFiles(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.css": "", "x/y.png": ""})
		files, err := listFiles(root)
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"a.css": {}, "x/y.png": {}}, files)
	})

	t.Run("missing root", func(t *testing.T) {
		files, err := listFiles(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
