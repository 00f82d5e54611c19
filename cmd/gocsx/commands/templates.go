package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
)

// NewTemplatesCommand creates the "templates" command.
func NewTemplatesCommand(env *Env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates gocsx new can scaffold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplates(env, format)
		},
	}

	addFormatFlag(cmd.Flags(), &format)
	return cmd
}

type templateInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        string   `json:"kind" yaml:"kind"`
	Extensions  []string `json:"extensions" yaml:"extensions"`
	Description string   `json:"description" yaml:"description"`
}

func runTemplates(env *Env, formatName string) error {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var infos []templateInfo
	for _, t := range env.Scaffolder().Registry().All() {
		infos = append(infos, templateInfo{
			Name:        t.Name,
			Kind:        t.Kind.String(),
			Extensions:  t.Extensions(),
			Description: t.Description,
		})
	}
	if format != output.FormatText {
		return output.Encode(env.Console.Out(), format, infos)
	}

	tw := tabwriter.NewWriter(env.Console.Out(), 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "NAME\tFILES\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, strings.Join(info.Extensions, " "), info.Description)
	}
	return nil
}
