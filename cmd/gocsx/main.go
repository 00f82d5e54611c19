package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/gocsx/cmd/gocsx/cli"
	"github.com/willibrandon/gocsx/cmd/gocsx/commands"
	"github.com/willibrandon/gocsx/cmd/gocsx/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "0.0.0-dev"
	commit       = "unknown"
	date         = "unknown"
)

func main() {
	version.Version = buildVersion
	version.Commit = commit
	version.Date = date
	cli.SetupVersion()

	env := commands.NewEnv(cli.Console)
	cli.SetSetup(env.Setup, env.Cleanup)

	cli.AddCommand(commands.NewVersionCommand(cli.Console))
	cli.AddCommand(commands.NewNamespaceCommand(env))
	cli.AddCommand(commands.NewNewCommand(env))
	cli.AddCommand(commands.NewTemplatesCommand(env))
	cli.AddCommand(commands.NewProjectCommand(env))
	cli.AddCommand(commands.NewBuildActionCommand(env))
	cli.AddCommand(commands.NewWatchCommand(env))
	cli.AddCommand(commands.NewMCPCommand(env))
	cli.AddCommand(commands.NewCompletionCommand())

	// Cancelled on Ctrl-C so watch can flush its pending batch.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx)
	// PersistentPostRun is skipped when a command fails.
	env.Cleanup()
	if err != nil {
		// SilenceErrors is set on the root command
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
