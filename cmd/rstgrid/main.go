package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/salmonumbrella/rstgrid/internal/cmd"
	"github.com/salmonumbrella/rstgrid/internal/update"
)

// Version information set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	app := cmd.NewApp()
	app.Version = Version
	app.Commit = Commit
	app.BuildTime = BuildTime
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
	notifyUpdate(ctx)
}

// notifyUpdate prints a release notice for people at a terminal only, so
// piped grids and MCP sessions stay clean.
func notifyUpdate(ctx context.Context) {
	if os.Getenv(update.EnvDisable) != "" {
		return
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	if msg := update.Check(ctx, Version); msg != "" {
		fmt.Fprintln(os.Stderr, "\n"+msg)
	}
}
