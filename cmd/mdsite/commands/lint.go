package commands

import (
	"os"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/lint"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Path   string `arg:"" optional:"" help:"Content directory to lint (defaults to site.content_dir)" type:"path"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Strict bool   `help:"Fail on warnings as well as errors"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadedConfig()
	if err != nil {
		return err
	}
	contentDir := cfg.Site.ContentDir
	if l.Path != "" {
		contentDir = l.Path
	}

	result, err := lint.NewLinter(lint.Config{
		ContentDir: contentDir,
		StaticDir:  cfg.Site.StaticDir,
		Quiet:      l.Quiet,
	}).Lint()
	if err != nil {
		return err
	}

	if err := lint.NewFormatter(l.Format, isColorSupported()).Format(os.Stdout, result); err != nil {
		return errors.RuntimeError("failed to write lint output").WithCause(err).Build()
	}

	if result.HasErrors() || (l.Strict && result.HasWarnings()) {
		return errors.ValidationError("lint found problems").
			WithContext("errors", result.ErrorCount()).
			WithContext("warnings", result.WarningCount()).
			Build()
	}
	return nil
}

// isColorSupported checks if the terminal supports color output.
func isColorSupported() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo == nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		return false
	}
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
