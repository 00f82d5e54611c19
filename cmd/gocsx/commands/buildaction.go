package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
	"github.com/willibrandon/gocsx/project"
)

// NewBuildActionCommand creates the parent "build-action" command.
func NewBuildActionCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build-action",
		Aliases: []string{"ba"},
		Short:   "Manage the build actions of files in project manifests",
		Long: `Manage build-action items (Compile, Content, None, ...) in the nearest
.csproj or .projitems manifest. Paths may be given relative to the current
directory and need not be below it.`,
		Example: `  # Classify a file, prompting for the action
  gocsx build-action set wwwroot/site.css

  # Classify a file without prompting
  gocsx build-action set Resources/Strings.resx EmbeddedResource

  # Follow a rename done outside the IDE
  gocsx build-action rename Models/User.cs Domain/User.cs

  # Drop every item below a deleted folder
  gocsx build-action remove Legacy --directory`,
	}

	cmd.AddCommand(newBuildActionSetCommand(env))
	cmd.AddCommand(newBuildActionRemoveCommand(env))
	cmd.AddCommand(newBuildActionRenameCommand(env))
	cmd.AddCommand(newBuildActionShowCommand(env))
	return cmd
}

func newBuildActionSetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:               "set <path> [action]",
		Short:             "Set the build action of a file",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeBuildActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := ""
			if len(args) == 2 {
				action = args[1]
			}
			return runBuildActionSet(cmd, env, args[0], action)
		},
	}
}

func runBuildActionSet(cmd *cobra.Command, env *Env, path, actionName string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := project.CheckItemPath(project.OSFS{}, abs); err != nil {
		if errors.Is(err, project.ErrUnsupportedTarget) {
			env.Console.Warning("%v", err)
			return nil
		}
		return err
	}

	w, err := env.findWriter(abs)
	if err != nil {
		return err
	}

	var action project.BuildAction
	if actionName != "" {
		action, err = project.ParseBuildAction(actionName)
		if err != nil || action == project.BuildActionFolder {
			return fmt.Errorf("invalid build action %q: must be one of %v", actionName, project.SelectableBuildActions())
		}
	} else {
		var ok bool
		action, ok, err = env.chooseBuildAction("Build action for " + filepath.Base(abs))
		if err != nil {
			return fmt.Errorf("a build action is required: %w", err)
		}
		if !ok {
			return nil
		}
	}

	err = env.Queue.Do(w.FilePath(), func() error {
		return w.AddBuildAction(cmd.Context(), abs, action)
	})
	if err != nil {
		return err
	}
	env.Console.Success("%s is now %s in %s", abs, action, w.FilePath())
	return nil
}

func newBuildActionRemoveCommand(env *Env) *cobra.Command {
	var directory bool
	cmd := &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a file, or every item below a directory, from its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildActionRemove(cmd, env, args[0], directory)
		},
	}
	cmd.Flags().BoolVar(&directory, "directory", false, "Treat path as a directory even if it no longer exists")
	return cmd
}

func runBuildActionRemove(cmd *cobra.Command, env *Env, path string, directory bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := env.findWriter(abs)
	if err != nil {
		return err
	}

	isDir := directory || isDirectory(abs)
	err = env.Queue.Do(w.FilePath(), func() error {
		if isDir {
			return w.RemoveDirectory(cmd.Context(), abs)
		}
		return w.RemoveBuildAction(cmd.Context(), abs)
	})
	if err != nil {
		return err
	}
	env.Console.Success("Removed %s from %s", abs, w.FilePath())
	return nil
}

func newBuildActionRenameCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Move the build action of a renamed file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildActionRename(cmd, env, args[0], args[1])
		},
	}
}

func runBuildActionRename(cmd *cobra.Command, env *Env, oldPath, newPath string) error {
	oldAbs, err := filepath.Abs(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := filepath.Abs(newPath)
	if err != nil {
		return err
	}
	w, err := env.findWriter(oldAbs)
	if err != nil {
		return err
	}

	isDir := isDirectory(oldAbs) || isDirectory(newAbs)
	err = env.Queue.Do(w.FilePath(), func() error {
		if isDir {
			return w.RenameDirectory(cmd.Context(), oldAbs, newAbs)
		}
		return w.RenameBuildAction(cmd.Context(), oldAbs, newAbs)
	})
	if err != nil {
		return err
	}
	env.Console.Success("Renamed %s to %s in %s", oldAbs, newAbs, w.FilePath())
	return nil
}

type buildActionInfo struct {
	Path         string `json:"path" yaml:"path"`
	ManifestPath string `json:"manifestPath" yaml:"manifestPath"`
	BuildAction  string `json:"buildAction,omitempty" yaml:"buildAction,omitempty"`
}

func newBuildActionShowCommand(env *Env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the build action of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildActionShow(cmd, env, args[0], format)
		},
	}
	addFormatFlag(cmd.Flags(), &format)
	return cmd
}

func runBuildActionShow(cmd *cobra.Command, env *Env, path, formatName string) error {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := env.findWriter(abs)
	if err != nil {
		return err
	}
	action, ok, err := w.BuildActionFor(cmd.Context(), abs)
	if err != nil {
		return err
	}

	info := buildActionInfo{Path: abs, ManifestPath: w.FilePath()}
	if ok {
		info.BuildAction = action.String()
	}
	if format != output.FormatText {
		return output.Encode(env.Console.Out(), format, info)
	}
	env.Console.Println(orNone(info.BuildAction))
	env.Console.Detail("in %s", info.ManifestPath)
	return nil
}

func isDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// completeBuildActions completes the action argument of build-action set.
func completeBuildActions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var names []string
	for _, a := range project.SelectableBuildActions() {
		names = append(names, a.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
