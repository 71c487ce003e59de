package site

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// CopyStatic mirrors the tree at src into dst and returns the number of files
// copied. With clean set, dst is removed first.
func CopyStatic(src, dst string, clean bool) (int, error) {
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return 0, errors.NotFoundError("static directory does not exist").
			WithContext("path", src).
			Build()
	}
	if clean {
		if err := os.RemoveAll(dst); err != nil {
			return 0, fsError(err, "failed to clean output directory", dst)
		}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, fsError(err, "failed to create output directory", dst)
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "failed to walk static directory", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fsError(err, "failed to resolve static path", path)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fsError(err, "failed to create directory", target)
			}
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

// listFiles returns the slash-separated paths of the regular files under root.
// A missing root yields an empty set.
func listFiles(root string) (map[string]struct{}, error) {
	files := map[string]struct{}{}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return files, nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "failed to walk directory", path)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fsError(err, "failed to resolve path", path)
		}
		files[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	return files, err
}

// removeStale deletes the files under dir that are not in keep and then the
// directories left empty. Directories listed in skip are not entered. It
// returns the removed paths, slash separated, in walk order.
func removeStale(dir string, keep map[string]struct{}, skip ...string) ([]string, error) {
	var (
		removed []string
		dirs    []string
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fsError(walkErr, "failed to walk output directory", path)
		}
		if d.IsDir() {
			if slices.Contains(skip, filepath.Clean(path)) {
				return filepath.SkipDir
			}
			if path != dir {
				dirs = append(dirs, path)
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fsError(err, "failed to resolve output path", path)
		}
		rel = filepath.ToSlash(rel)
		if _, ok := keep[rel]; ok {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fsError(err, "failed to remove stale file", path)
		}
		removed = append(removed, rel)
		return nil
	})
	if err != nil {
		return removed, err
	}
	// WalkDir visits parents first; walking back removes children first.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fsError(err, "failed to open file", src)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fsError(err, "failed to create directory", filepath.Dir(dst))
	}
	out, err := os.Create(dst)
	if err != nil {
		return fsError(err, "failed to create file", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fsError(err, "failed to copy file", dst)
	}
	if err := out.Close(); err != nil {
		return fsError(err, "failed to close file", dst)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fsError(err, "failed to create directory", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fsError(err, "failed to write file", path)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return errors.FileSystemError(msg).
		WithCause(err).
		WithContext("path", path).
		Build()
}
