package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
	"github.com/willibrandon/gocsx/template"
)

type newOptions struct {
	register bool
	format   string
}

// NewNewCommand creates the "new" command.
func NewNewCommand(env *Env) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new <template> <directory> [name]",
		Short: "Create C# files from a template",
		Long: `Create the files of a template in a directory. The namespace is resolved
for the directory and using directives follow the nearest project's
ImplicitUsings and target framework. Existing files are never overwritten.

When name is omitted it is prompted for.

Examples:
  gocsx new class src/App/Models User
  gocsx new razor_page src/App/Pages Index --register
  gocsx templates`,
		Args:              cobra.RangeArgs(2, 3),
		ValidArgsFunction: completeTemplateNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 3 {
				name = args[2]
			}
			return runNew(cmd, env, args[0], args[1], name, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.register, "register", false, "Add the created files to the nearest project manifest")
	addFormatFlag(cmd.Flags(), &opts.format)
	return cmd
}

func runNew(cmd *cobra.Command, env *Env, templateName, dir, name string, opts *newOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	scaffolder := env.Scaffolder()
	if _, ok := scaffolder.Registry().Get(templateName); !ok {
		return fmt.Errorf("%w %q, run 'gocsx templates' for the list", template.ErrUnknownTemplate, templateName)
	}

	if name == "" {
		p, err := env.prompter()
		if err != nil {
			return fmt.Errorf("a name is required: %w", err)
		}
		answer, ok, err := p.Input("Filename", "")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		name = answer
	}

	ctx := cmd.Context()
	res, err := scaffolder.Scaffold(ctx, template.Request{Template: templateName, Directory: dir, Name: name})
	if err != nil {
		return err
	}

	var manifest string
	var registerErr error
	if opts.register && len(res.Files) > 0 {
		manifest, registerErr = registerFiles(cmd, env, res)
	}

	if format != output.FormatText {
		if err := output.Encode(env.Console.Out(), format, res); err != nil {
			return err
		}
		return registerErr
	}

	for _, f := range res.Files {
		env.Console.Success("Created %s", f.Path)
		if f.Cursor != nil {
			env.Console.Detail("  cursor at line %d, column %d", f.Cursor.Line+1, f.Cursor.Column+1)
		}
		if manifest != "" {
			env.Console.Info("  added to %s as %s", manifest, f.BuildAction)
		}
	}
	env.Console.Detail("Namespace: %s", res.Namespace)
	return registerErr
}

// registerFiles classifies the created files in one manifest write and
// returns the manifest path.
func registerFiles(cmd *cobra.Command, env *Env, res *template.Result) (string, error) {
	w, err := env.findWriter(res.Files[0].Path)
	if err != nil {
		return "", fmt.Errorf("files created but not registered: %w", err)
	}
	err = env.Queue.Do(w.FilePath(), func() error {
		return w.Classify(cmd.Context(), res.Classifications())
	})
	if err != nil {
		return "", fmt.Errorf("files created but not registered: %w", err)
	}
	return w.FilePath(), nil
}

// completeTemplateNames completes the template argument.
func completeTemplateNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return template.DefaultRegistry().Names(), cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
