package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
	"github.com/willibrandon/gocsx/project"
)

// NewProjectCommand creates the parent "project" command.
func NewProjectCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Inspect project manifests",
	}
	cmd.AddCommand(newProjectInfoCommand(env))
	return cmd
}

func newProjectInfoCommand(env *Env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info [path]",
		Short: "Describe the manifest governing a path",
		Long: `Describe the nearest .csproj (or project.json) at or above path, which
defaults to the current directory.

Examples:
  gocsx project info
  gocsx project info src/App/Models/User.cs --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runProjectInfo(cmd, env, path, format)
		},
	}

	addFormatFlag(cmd.Flags(), &format)
	return cmd
}

func runProjectInfo(cmd *cobra.Command, env *Env, path, formatName string) error {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := project.Describe(cmd.Context(), abs, env.projectOptions()...)
	if errors.Is(err, project.ErrNotFound) {
		return fmt.Errorf("no project manifest found for %s", abs)
	}
	if err != nil {
		return err
	}
	if format != output.FormatText {
		return output.Encode(env.Console.Out(), format, info)
	}

	c := env.Console
	c.Header("%s", info.ManifestPath)
	row := func(label string, value any) { c.Printf("  %-18s%v\n", label+":", value) }
	row("Kind", info.Kind)
	row("Root namespace", orNone(info.RootNamespace))
	row("Target framework", orNone(info.TargetFramework))
	row(".NET 6 or later", info.Net6OrLater)
	row("Implicit usings", info.ImplicitUsings)
	row("Items", info.ItemCount)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
