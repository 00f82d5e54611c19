package commands

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/version"
	"github.com/willibrandon/gocsx/mcptools"
)

// NewMCPCommand creates the "mcp" command.
func NewMCPCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve gocsx tools over MCP on stdin/stdout",
		Long: `Run a Model Context Protocol server on stdin/stdout so editors and agents
can resolve namespaces, scaffold files and edit build actions.

Logs go to stderr; stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newMCPServer(env)
			return server.ServeStdio(s)
		},
	}
}

func newMCPServer(env *Env) *server.MCPServer {
	return mcptools.NewServer(version.Version, env.Resolver(), env.Scaffolder(), mcptools.Deps{
		Logger:        env.Logger,
		Queue:         env.Queue,
		IncludeShared: env.Config.Watch.IncludeShared,
		ProjectOpts:   env.projectOptions(),
	})
}
