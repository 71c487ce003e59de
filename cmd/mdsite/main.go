package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdsite/cmd/mdsite/commands"
	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("mdsite"),
		kong.Description("Build a static site from a directory of Markdown pages."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	if err != nil {
		if errors.IsClassified(err) {
			adapter.HandleError(err)
		}
		parser.FatalIfErrorf(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&commands.Global{Logger: slog.Default(), Context: ctx}, cli)
	stop()
	adapter.HandleError(err)
}
