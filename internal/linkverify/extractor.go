// Package linkverify checks that internal links in a generated site resolve to
// files in the output tree.
package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path
	Text      string // Link text, alt text, or rel
	Tag       string // HTML tag (a, img, script, link, source)
	Attribute string // Attribute containing the link (href or src)
	Internal  bool   // No scheme and no host: resolved against the output tree
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.FileSystemError("failed to open HTML file").WithCause(err).
			WithContext("html_path", htmlPath).
			Build()
	}
	defer func() { _ = file.Close() }()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader extracts all links from an HTML reader in document order.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := elementLink(n); ok {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func elementLink(n *html.Node) (Link, bool) {
	var attr, text string
	switch n.Data {
	case "a":
		attr, text = "href", extractText(n)
	case "link":
		attr, text = "href", getAttr(n, "rel")
	case "img":
		attr, text = "src", getAttr(n, "alt")
	case "script", "source", "video", "audio":
		attr = "src"
	default:
		return Link{}, false
	}
	v := strings.TrimSpace(getAttr(n, attr))
	if v == "" {
		return Link{}, false
	}
	return Link{URL: v, Text: text, Tag: n.Data, Attribute: attr, Internal: isInternalLink(v)}, true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

func isInternalLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// ShouldVerify reports whether link points at something in the output tree.
func ShouldVerify(link Link) bool {
	if !link.Internal || link.URL == "" || strings.HasPrefix(link.URL, "#") {
		return false
	}
	u, err := url.Parse(link.URL)
	if err != nil {
		return true
	}
	return u.Path != ""
}
