package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpub/cmd/docpub/commands"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("docpub"),
		kong.Description("Build and publish a documentation collection from its sources."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&commands.Global{Logger: slog.Default(), Stdout: os.Stdout}, &cli)
	if err != nil {
		if ctx.Err() != nil {
			// Interrupted: report briefly, no stack trace.
			os.Stderr.WriteString("docpub: interrupted\n")
			stop()
			os.Exit(130)
		}
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
