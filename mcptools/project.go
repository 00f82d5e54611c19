package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/willibrandon/gocsx/project"
)

// ProjectInfoTool handles the project_info MCP tool.
type ProjectInfoTool struct {
	deps Deps
}

// NewProjectInfoTool creates a ProjectInfoTool.
func NewProjectInfoTool(deps Deps) *ProjectInfoTool {
	return &ProjectInfoTool{deps: deps.withDefaults()}
}

// Definition returns the MCP tool definition for registration.
func (t *ProjectInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("project_info",
		mcp.WithDescription(
			"Describe the project manifest governing a path: manifest path and kind, "+
				"root namespace, target framework, whether it targets .NET 6 or later, "+
				"implicit usings and the number of classified items.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("A file or directory inside the project."),
		),
	)
}

// Handle processes the project_info tool call.
func (t *ProjectInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, errResult := absPath(req, "path")
	if errResult != nil {
		return errResult, nil
	}

	info, err := project.Describe(ctx, path, t.deps.projectOptions()...)
	if errors.Is(err, project.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no project manifest found for %s", path)), nil
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(info)
}
