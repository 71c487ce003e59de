package linkverify

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// BrokenLink is an internal link whose target does not exist.
type BrokenLink struct {
	Page   string // output-relative page path
	URL    string
	Tag    string
	Reason string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: <%s> %s (%s)", b.Page, b.Tag, b.URL, b.Reason)
}

// Result summarizes a verification run.
type Result struct {
	Pages  int
	Links  int
	Broken []BrokenLink
}

// Err returns a validation error describing the broken links, or nil.
func (r *Result) Err() error {
	if r == nil || len(r.Broken) == 0 {
		return nil
	}
	first := make([]string, 0, 5)
	for i, b := range r.Broken {
		if i == cap(first) {
			break
		}
		first = append(first, b.String())
	}
	return errors.ValidationError(fmt.Sprintf("%d broken internal links", len(r.Broken))).
		WithContext("broken", len(r.Broken)).
		WithContext("examples", strings.Join(first, "; ")).
		Build()
}

// Verifier checks generated pages against the output tree.
type Verifier struct {
	outputDir   string
	basePath    string
	concurrency int
}

// NewVerifier returns a verifier for the site in outputDir served under basePath.
func NewVerifier(outputDir, basePath string, concurrency int) *Verifier {
	if concurrency <= 0 {
		concurrency = 4
	}
	if basePath == "" {
		basePath = "/"
	}
	return &Verifier{outputDir: outputDir, basePath: basePath, concurrency: concurrency}
}

// Verify parses every HTML page in the output tree and checks its internal links.
func (v *Verifier) Verify(ctx context.Context) (*Result, error) {
	var pages []string
	err := filepath.WalkDir(v.outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemError("failed to walk output directory").WithCause(err).
			WithContext("path", v.outputDir).
			Build()
	}

	res := &Result{Pages: len(pages)}
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	sem := make(chan struct{}, v.concurrency)
	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()

			checked, broken, err := v.verifyPage(p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			res.Links += checked
			res.Broken = append(res.Broken, broken...)
		}(p)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(res.Broken, func(i, j int) bool {
		if res.Broken[i].Page != res.Broken[j].Page {
			return res.Broken[i].Page < res.Broken[j].Page
		}
		return res.Broken[i].URL < res.Broken[j].URL
	})
	for _, b := range res.Broken {
		slog.Warn("Broken link", logfields.File(b.Page), logfields.URL(b.URL), slog.String("reason", b.Reason))
	}
	return res, nil
}

func (v *Verifier) verifyPage(pagePath string) (int, []BrokenLink, error) {
	links, err := ExtractLinks(pagePath)
	if err != nil {
		return 0, nil, err
	}
	rel, err := filepath.Rel(v.outputDir, pagePath)
	if err != nil {
		return 0, nil, err
	}
	rel = filepath.ToSlash(rel)

	checked := 0
	var broken []BrokenLink
	for _, l := range links {
		if !ShouldVerify(l) {
			continue
		}
		checked++
		if reason := v.check(rel, l.URL); reason != "" {
			broken = append(broken, BrokenLink{Page: rel, URL: l.URL, Tag: l.Tag, Reason: reason})
		}
	}
	return checked, broken, nil
}

// check resolves link as seen from page and returns why it is broken, or "".
func (v *Verifier) check(page, link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "unparseable URL"
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}

	var target string
	if strings.HasPrefix(p, "/") {
		trimmed, ok := strings.CutPrefix(p, v.basePath)
		switch {
		case ok:
			target = trimmed
		case p+"/" == v.basePath:
			target = ""
		default:
			return "outside base path " + v.basePath
		}
	} else {
		target = path.Join(path.Dir(page), p)
	}
	// ".." above the root is clamped, as browsers do
	target = strings.TrimPrefix(path.Clean("/"+target), "/")

	if v.exists(target) {
		return ""
	}
	return "target not found"
}

func (v *Verifier) exists(target string) bool {
	full := filepath.Join(v.outputDir, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err == nil {
		if !info.IsDir() {
			return true
		}
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	if filepath.Ext(full) == "" {
		_, err = os.Stat(full + ".html")
		return err == nil
	}
	return false
}
