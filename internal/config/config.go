package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "mdsite.yaml"

// Config is the mdsite configuration file.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Build   BuildConfig   `yaml:"build"`
	Source  SourceConfig  `yaml:"source,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
	Serve   ServeConfig   `yaml:"serve"`
}

// SiteConfig locates the site inputs and output.
type SiteConfig struct {
	ContentDir string `yaml:"content_dir"` // Markdown pages and page assets
	StaticDir  string `yaml:"static_dir"`  // copied into the output before pages are generated
	Template   string `yaml:"template"`    // page template with {{ Title }} and {{ Content }}
	OutputDir  string `yaml:"output_dir"`
	BasePath   string `yaml:"base_path"` // prefix for root-relative href/src
	BaseURL    string `yaml:"base_url"`  // absolute site URL, used for sitemap.xml
}

// BuildConfig tunes the generator.
type BuildConfig struct {
	Workers     int    `yaml:"workers"`
	Incremental bool   `yaml:"incremental"`
	StateDB     string `yaml:"state_db"`
	VerifyLinks bool   `yaml:"verify_links"`
	Sitemap     bool   `yaml:"sitemap"`
}

// SourceConfig optionally fetches content from elsewhere.
type SourceConfig struct {
	Git *GitSource `yaml:"git,omitempty"`
}

// GitSource describes a remote content repository.
type GitSource struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	Depth  int    `yaml:"depth"`
	Subdir string `yaml:"subdir"` // content directory inside the repository
	Token  string `yaml:"token"`  // optional HTTPS token, usually ${GIT_TOKEN}
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Port         int    `yaml:"port"`
	Debounce     string `yaml:"debounce"`      // quiet period before a watch-triggered rebuild
	PollInterval string `yaml:"poll_interval"` // periodic rebuild, empty disables
	Metrics      bool   `yaml:"metrics"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Load reads path, expands ${VAR} references, normalizes, applies defaults, and validates.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes YAML configuration data. See Load.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config").Build()
	}

	res := NormalizeConfig(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", "warning", w)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolvePaths makes every relative site path absolute against dir.
func (c *Config) ResolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Site.ContentDir = abs(c.Site.ContentDir)
	c.Site.StaticDir = abs(c.Site.StaticDir)
	c.Site.Template = abs(c.Site.Template)
	c.Site.OutputDir = abs(c.Site.OutputDir)
	c.Build.StateDB = abs(c.Build.StateDB)
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.Site.BaseURL = "https://example.com"
	example.Build.Sitemap = true
	example.Build.VerifyLinks = true
	example.Serve.Metrics = true
	example.Source.Git = &GitSource{
		URL:    "https://github.com/your-org/site-content.git",
		Branch: "main",
		Depth:  1,
		Subdir: "content",
		Token:  "${GIT_TOKEN}",
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	header := "# mdsite configuration. Remove source.git to build from the local content_dir.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return errors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
