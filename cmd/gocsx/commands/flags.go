package commands

import (
	"github.com/spf13/pflag"
)

// addFormatFlag registers the --format flag shared by commands with structured output.
func addFormatFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVarP(p, "format", "f", "text", "Output format: text, json or yaml")
}
