package config

import (
	"fmt"
	"runtime"
	"strings"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site layout defaults. They reproduce the classic
// layout: content/, static/, template.html, rendered into docs/.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.ContentDir == "" {
		cfg.Site.ContentDir = "content"
	}
	if cfg.Site.StaticDir == "" {
		cfg.Site.StaticDir = "static"
	}
	if cfg.Site.Template == "" {
		cfg.Site.Template = "template.html"
	}
	if cfg.Site.OutputDir == "" {
		cfg.Site.OutputDir = "docs"
	}
	if cfg.Site.BasePath == "" {
		cfg.Site.BasePath = "/"
	}
	if !strings.HasSuffix(cfg.Site.BasePath, "/") {
		cfg.Site.BasePath += "/"
	}
	cfg.Site.BaseURL = strings.TrimSuffix(cfg.Site.BaseURL, "/")
	return nil
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = runtime.NumCPU()
	}
	if cfg.Build.StateDB == "" {
		cfg.Build.StateDB = ".mdsite/state.db"
	}
	return nil
}

// SourceDefaultApplier handles remote content defaults.
type SourceDefaultApplier struct{}

func (s *SourceDefaultApplier) Domain() string { return "source" }

func (s *SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	g := cfg.Source.Git
	if g == nil {
		return nil
	}
	if g.URL == "" {
		cfg.Source.Git = nil
		return nil
	}
	if g.Depth <= 0 {
		g.Depth = 1
	}
	return nil
}

// LoggingDefaultApplier handles logging defaults.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}

// ServeDefaultApplier handles preview server defaults.
type ServeDefaultApplier struct{}

func (s *ServeDefaultApplier) Domain() string { return "serve" }

func (s *ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8080
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = "300ms"
	}
	return nil
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&BuildDefaultApplier{},
			&SourceDefaultApplier{},
			&LoggingDefaultApplier{},
			&ServeDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// GetApplierByDomain returns a specific domain applier (useful for testing).
func (c *CompositeDefaultApplier) GetApplierByDomain(domain string) DefaultApplier {
	for _, applier := range c.appliers {
		if applier.Domain() == domain {
			return applier
		}
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}
