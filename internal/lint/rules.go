package lint

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// SyntaxRule reports Markdown the converter rejects, such as unmatched delimiters.
type SyntaxRule struct{}

func (r *SyntaxRule) Name() string { return "markdown-syntax" }

func (r *SyntaxRule) AppliesTo(f File) bool { return IsPage(f.Rel) }

func (r *SyntaxRule) Check(f File) ([]Issue, error) {
	_, err := markdown.ToHTML(string(f.Content))
	if err == nil {
		return nil, nil
	}
	ce, ok := errors.AsClassified(err)
	if !ok || !ce.IsCategory(errors.CategorySyntax) {
		return nil, err
	}

	issue := Issue{
		FilePath: f.Rel,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  ce.Message(),
	}
	ctx := ce.Context()
	if v, ok := ctx.Get(logfields.KeyBlock); ok {
		if n, ok := v.(int); ok {
			issue.Block = n
		}
	}
	blockType, _ := ctx.GetString(logfields.KeyBlockType)
	delim, _ := ctx.GetString(logfields.KeyDelimiter)
	issue.Explanation = fmt.Sprintf("Block %d (%s) has an odd number of %q delimiters.\nEmphasis cannot nest or span blocks.", issue.Block, blockType, delim)
	issue.Fix = fmt.Sprintf("Close the %q span or escape it by rewording", delim)
	return []Issue{issue}, nil
}

// TitleRule requires every page to have a "# " heading to use as its title.
type TitleRule struct{}

func (r *TitleRule) Name() string { return "page-title" }

func (r *TitleRule) AppliesTo(f File) bool { return IsPage(f.Rel) }

func (r *TitleRule) Check(f File) ([]Issue, error) {
	if _, err := site.ExtractTitle(string(f.Content)); err == nil {
		return nil, nil
	}
	return []Issue{{
		FilePath:    f.Rel,
		Severity:    SeverityError,
		Rule:        r.Name(),
		Message:     "Page has no title",
		Explanation: "The page title comes from the first line starting with \"# \".",
		Fix:         "Add a level-1 heading, e.g. \"# Getting started\"",
	}}, nil
}

// LinkRule reports relative links that do not resolve to a content file or static asset.
type LinkRule struct {
	ContentDir string
	StaticDir  string
}

func (r *LinkRule) Name() string { return "broken-link" }

func (r *LinkRule) AppliesTo(f File) bool { return IsPage(f.Rel) }

func (r *LinkRule) Check(f File) ([]Issue, error) {
	var issues []Issue
	for _, l := range markdown.ExtractLinks(f.Content) {
		target, ok := localTarget(f.Rel, l.Destination)
		if !ok || r.resolves(target) {
			continue
		}
		issues = append(issues, Issue{
			FilePath:    f.Rel,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Broken %s link: %s", l.Kind, l.Destination),
			Explanation: fmt.Sprintf("Resolved to %q, which is neither a content file nor a static asset.", target),
			Fix:         "Point the link at an existing page (.md or .html) or asset",
		})
	}
	return issues, nil
}

// localTarget resolves dest as seen from the page at rel. ok is false for links
// that leave the site or only carry a fragment or query.
func localTarget(rel, dest string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(dest))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir(rel), p)
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/"), true
}

func (r *LinkRule) resolves(target string) bool {
	candidates := []string{target}
	switch ext := strings.ToLower(path.Ext(target)); ext {
	case ".html":
		candidates = append(candidates, strings.TrimSuffix(target, path.Ext(target))+".md")
	case "":
		candidates = append(candidates, target+".md", path.Join(target, "index.md"), path.Join(target, "index.html"))
	}
	for _, root := range []string{r.ContentDir, r.StaticDir} {
		if root == "" {
			continue
		}
		for _, c := range candidates {
			info, err := os.Stat(filepath.Join(root, filepath.FromSlash(c)))
			if err == nil && !info.IsDir() {
				return true
			}
		}
	}
	return false
}

// FilenameRule flags file names that produce awkward or surprising URLs.
type FilenameRule struct{}

func (r *FilenameRule) Name() string { return "filename-conventions" }

func (r *FilenameRule) AppliesTo(File) bool { return true }

func (r *FilenameRule) Check(f File) ([]Issue, error) {
	name := path.Base(f.Rel)
	var issues []Issue
	if strings.ContainsAny(name, " \t") {
		issues = append(issues, Issue{
			FilePath:    f.Rel,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "File name contains whitespace",
			Explanation: "Whitespace is percent-encoded in URLs, which makes links fragile.",
			Fix:         "Use hyphens instead of spaces",
		})
	}
	if i := strings.Index(strings.ToLower(name), ".md."); i > 0 {
		issues = append(issues, Issue{
			FilePath:    f.Rel,
			Severity:    SeverityWarning,
			Rule:        r.Name(),
			Message:     "Backup copy of a page",
			Explanation: "Files like page.md.bak are not rendered; they are copied into the site verbatim.",
			Fix:         "Remove the file from the content directory",
		})
	}
	return issues, nil
}
