// Package commands implements the mdsite command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Logger  *slog.Logger
	Context context.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdsite.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Serve the site locally and rebuild on change"`
	Lint  LintCmd  `cmd:"" help:"Check content for problems without building"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`

	cfg *config.Config
}

// AfterApply runs after flag parsing: it loads the configuration and sets up
// logging once for every command.
func (c *CLI) AfterApply(kctx *kong.Context) error {
	level := slog.LevelInfo
	format := config.LogFormatText
	if !strings.HasPrefix(kctx.Command(), "init") {
		cfg, err := LoadConfig(c.Config)
		if err != nil {
			return err
		}
		c.cfg = cfg
		level = cfg.Logging.Level.SlogLevel()
		format = cfg.Logging.Format
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(format, level))
	return nil
}

func newLogger(format config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadConfig loads path and resolves relative site paths against its directory.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve config directory").
			WithContext("path", path).
			Build()
	}
	cfg.ResolvePaths(dir)
	return cfg, nil
}

// loadedConfig returns the configuration loaded in AfterApply, loading it on demand
// for callers that bypass kong.
func (c *CLI) loadedConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// normalizeBasePath turns "repo", "/repo" and "/repo/" into "/repo/".
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// stateDir is where build reports and the persistent checkout live.
func stateDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Build.StateDB)
}
