package site

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// buildSitemap renders a sitemaps.org urlset for the given output-relative page
// paths. index.html pages are listed by their directory URL.
func buildSitemap(baseURL, basePath string, pages []string, lastMod time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	prefix := "/" + strings.Trim(basePath, "/")
	if prefix != "/" {
		prefix += "/"
	}

	seen := make(map[string]struct{}, len(pages))
	locations := make([]string, 0, len(pages))
	for _, page := range pages {
		route := strings.TrimPrefix(page, "/")
		if route == "index.html" {
			route = ""
		} else if strings.HasSuffix(route, "/index.html") {
			route = strings.TrimSuffix(route, "index.html")
		}
		loc := base + prefix + route
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locations {
		b.WriteString("  <url>\n")
		b.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", html.EscapeString(loc)))
		if !lastMod.IsZero() {
			b.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", lastMod.UTC().Format(time.RFC3339)))
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return b.String()
}
