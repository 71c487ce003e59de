package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Snapshot computes a stable hash of the output-affecting configuration fields.
// Logging and serve settings are left out so they never force a full rebuild.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("site.base_path", c.Site.BasePath)
	w("site.base_url", c.Site.BaseURL)
	w("site.output_dir", c.Site.OutputDir)
	if c.Build.Sitemap {
		w("build.sitemap", "true")
	}
	if g := c.Source.Git; g != nil {
		w("source.git.url", g.URL)
		w("source.git.branch", g.Branch)
		w("source.git.subdir", g.Subdir)
	}
	return hex.EncodeToString(h.Sum(nil))
}
