package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/willibrandon/gocsx/namespace"
)

// ResolveNamespaceTool handles the resolve_namespace MCP tool.
type ResolveNamespaceTool struct {
	resolver *namespace.Resolver
}

// NewResolveNamespaceTool creates a ResolveNamespaceTool.
func NewResolveNamespaceTool(resolver *namespace.Resolver) *ResolveNamespaceTool {
	return &ResolveNamespaceTool{resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *ResolveNamespaceTool) Definition() mcp.Tool {
	return mcp.NewTool("resolve_namespace",
		mcp.WithDescription(
			"Resolve the C# namespace a source file should declare. "+
				"Uses the RootNamespace of the nearest .csproj, then tooling.defaultNamespace "+
				"of the nearest project.json, then the directory layout.",
		),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the source file. It does not need to exist."),
		),
	)
}

// Handle processes the resolve_namespace tool call.
func (t *ResolveNamespaceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, errResult := absPath(req, "file")
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(t.resolver.ResolveDetailed(ctx, file))
}
