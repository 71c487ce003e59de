package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Validate checks a normalized, defaulted configuration.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateSite,
		c.validateBuild,
		c.validateSource,
		c.validateServe,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSite() error {
	s := c.Site
	if !strings.HasPrefix(s.BasePath, "/") {
		return configError("site.base_path must start with '/'", "site.base_path", s.BasePath)
	}
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return configError("site.base_url must be an absolute URL", "site.base_url", s.BaseURL)
		}
	}
	if filepath.Clean(s.OutputDir) == filepath.Clean(s.ContentDir) {
		return configError("site.output_dir must differ from site.content_dir", "site.output_dir", s.OutputDir)
	}
	if filepath.Clean(s.OutputDir) == filepath.Clean(s.StaticDir) {
		return configError("site.output_dir must differ from site.static_dir", "site.output_dir", s.OutputDir)
	}
	return nil
}

func (c *Config) validateBuild() error {
	if c.Build.Sitemap && c.Site.BaseURL == "" {
		return configError("build.sitemap requires site.base_url", "site.base_url", "")
	}
	return nil
}

func (c *Config) validateSource() error {
	g := c.Source.Git
	if g == nil {
		return nil
	}
	if filepath.IsAbs(g.Subdir) || strings.HasPrefix(filepath.Clean(g.Subdir), "..") {
		return configError("source.git.subdir must stay inside the repository", "source.git.subdir", g.Subdir)
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return configError("serve.port out of range", "serve.port", c.Serve.Port)
	}
	if _, err := time.ParseDuration(c.Serve.Debounce); err != nil {
		return configError("serve.debounce is not a duration", "serve.debounce", c.Serve.Debounce)
	}
	if c.Serve.PollInterval != "" {
		d, err := time.ParseDuration(c.Serve.PollInterval)
		if err != nil || d <= 0 {
			return configError("serve.poll_interval must be a positive duration", "serve.poll_interval", c.Serve.PollInterval)
		}
	}
	return nil
}

// DebounceDuration returns the parsed serve.debounce.
func (s ServeConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(s.Debounce)
	return d
}

// PollDuration returns the parsed serve.poll_interval, or zero when polling is off.
func (s ServeConfig) PollDuration() time.Duration {
	if s.PollInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(s.PollInterval)
	return d
}

func configError(msg, field string, value any) error {
	return errors.ConfigError(msg).
		WithContext("field", field).
		WithContext("value", value).
		Build()
}
