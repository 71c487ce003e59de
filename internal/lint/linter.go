package lint

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Linter performs linting operations on a content tree.
type Linter struct {
	cfg   Config
	rules []Rule
}

// NewLinter creates a linter with the default rule set.
func NewLinter(cfg Config) *Linter {
	return &Linter{
		cfg: cfg,
		rules: []Rule{
			&SyntaxRule{},
			&TitleRule{},
			&LinkRule{ContentDir: cfg.ContentDir, StaticDir: cfg.StaticDir},
			&FilenameRule{},
		},
	}
}

// Lint walks the content directory and applies every rule to every file.
func (l *Linter) Lint() (*Result, error) {
	info, err := os.Stat(l.cfg.ContentDir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFoundError("content directory does not exist").
			WithContext("path", l.cfg.ContentDir).
			Build()
	}

	result := &Result{Issues: []Issue{}}
	err = filepath.WalkDir(l.cfg.ContentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.cfg.ContentDir, path)
		if err != nil {
			return err
		}
		f := File{Path: path, Rel: filepath.ToSlash(rel)}
		if IsPage(path) {
			if f.Content, err = os.ReadFile(path); err != nil {
				return err
			}
		}
		result.FilesTotal++
		return l.lintFile(f, result)
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.FileSystemError("failed to lint content").WithCause(err).Build()
	}

	sort.SliceStable(result.Issues, func(i, j int) bool {
		return result.Issues[i].FilePath < result.Issues[j].FilePath
	})
	return result, nil
}

func (l *Linter) lintFile(f File, result *Result) error {
	for _, rule := range l.rules {
		if !rule.AppliesTo(f) {
			continue
		}
		issues, err := rule.Check(f)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			if l.cfg.Quiet && issue.Severity != SeverityError {
				if issue.Severity == SeverityWarning {
					result.Suppressed++
				}
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	return nil
}
