package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/willibrandon/gocsx/namespace"
	"github.com/willibrandon/gocsx/template"
)

const instructions = "gocsx keeps C# project manifests in sync with the files of a project. " +
	"Use resolve_namespace before writing a new C# file, scaffold to create files from templates, " +
	"and set_build_action, remove_build_action and rename_build_action after creating, deleting " +
	"or renaming files outside of the build."

// NewServer creates the MCP server with every tool registered.
func NewServer(version string, resolver *namespace.Resolver, scaffolder *template.Scaffolder, deps Deps) *server.MCPServer {
	deps = deps.withDefaults()

	s := server.NewMCPServer(
		"gocsx",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	resolveTool := NewResolveNamespaceTool(resolver)
	s.AddTool(resolveTool.Definition(), resolveTool.Handle)

	infoTool := NewProjectInfoTool(deps)
	s.AddTool(infoTool.Definition(), infoTool.Handle)

	setTool := NewSetBuildActionTool(deps)
	s.AddTool(setTool.Definition(), setTool.Handle)

	removeTool := NewRemoveBuildActionTool(deps)
	s.AddTool(removeTool.Definition(), removeTool.Handle)

	renameTool := NewRenameBuildActionTool(deps)
	s.AddTool(renameTool.Definition(), renameTool.Handle)

	scaffoldTool := NewScaffoldTool(scaffolder, deps)
	s.AddTool(scaffoldTool.Definition(), scaffoldTool.Handle)

	return s
}
