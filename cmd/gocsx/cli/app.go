// Package cli holds the gocsx root command.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
)

var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gocsx",
		Short: "C# project manifest tooling",
		Long: `gocsx keeps C# project manifests (.csproj, .projitems, project.json)
in step with the files of a project: it resolves namespaces, scaffolds files
from templates, and adds, removes or renames build-action items.

Complete documentation is available at https://github.com/willibrandon/gocsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// Show help when no command is provided
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Configuration file to use instead of the nearest .gocsx.yaml")
	cmd.PersistentFlags().String("verbosity", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	cmd.PersistentFlags().Bool("non-interactive", false, "Do not prompt for user input")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	return cmd
}

// Console is the global console for CLI commands
var Console = output.DefaultConsole()

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetSetup registers fn to run before every subcommand and cleanup after it.
func SetSetup(fn func(cmd *cobra.Command) error, cleanup func()) {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return fn(cmd)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		cleanup()
	}
}
