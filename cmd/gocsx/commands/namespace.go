package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
)

type namespaceOptions struct {
	format string
}

// NewNamespaceCommand creates the "namespace" command.
func NewNamespaceCommand(env *Env) *cobra.Command {
	opts := &namespaceOptions{}

	cmd := &cobra.Command{
		Use:   "namespace <file>",
		Short: "Print the namespace a C# file should declare",
		Long: `Print the namespace for a C# file, which need not exist yet.

The namespace is the RootNamespace of the nearest .csproj (or the name of a
project.json directory) followed by the file's folders below the manifest.
Without a manifest the first workspace root is used.

Examples:
  gocsx namespace src/App/Models/User.cs
  gocsx namespace src/App/Models/User.cs --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNamespace(cmd, env, args[0], opts)
		},
	}

	addFormatFlag(cmd.Flags(), &opts.format)
	return cmd
}

func runNamespace(cmd *cobra.Command, env *Env, file string, opts *namespaceOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	res := env.Resolver().ResolveDetailed(cmd.Context(), abs)
	if format != output.FormatText {
		return output.Encode(env.Console.Out(), format, res)
	}
	env.Console.Println(res.Namespace)
	if res.ManifestPath != "" {
		env.Console.Detail("from %s (%s)", res.ManifestPath, res.Source)
	}
	return nil
}
