package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/willibrandon/gocsx/project"
	"github.com/willibrandon/gocsx/template"
)

// ScaffoldTool handles the scaffold MCP tool.
type ScaffoldTool struct {
	scaffolder *template.Scaffolder
	deps       Deps
}

// NewScaffoldTool creates a ScaffoldTool.
func NewScaffoldTool(scaffolder *template.Scaffolder, deps Deps) *ScaffoldTool {
	return &ScaffoldTool{scaffolder: scaffolder, deps: deps.withDefaults()}
}

// Definition returns the MCP tool definition for registration.
func (t *ScaffoldTool) Definition() mcp.Tool {
	return mcp.NewTool("scaffold",
		mcp.WithDescription(
			"Create C# source files from a template with the namespace resolved for the target directory. "+
				"Existing files are never overwritten.",
		),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template name."),
			mcp.Enum(t.scaffolder.Registry().Names()...),
		),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Directory to create the files in."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Type name, also used as the file name. A .cs suffix is ignored."),
		),
		mcp.WithBoolean("register",
			mcp.Description("Add the created files to the nearest project manifest."),
		),
	)
}

// Handle processes the scaffold tool call.
func (t *ScaffoldTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, errResult := absPath(req, "directory")
	if errResult != nil {
		return errResult, nil
	}

	res, err := t.scaffolder.Scaffold(ctx, template.Request{
		Template:  req.GetString("template", ""),
		Directory: dir,
		Name:      req.GetString("name", ""),
	})
	switch {
	case errors.Is(err, template.ErrUnknownTemplate), errors.Is(err, template.ErrFilesExist), errors.Is(err, project.ErrInvalidArgument):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return nil, err
	}

	if req.GetBool("register", false) {
		if err := t.register(ctx, res); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("files created but not registered: %v", err)), nil
		}
	}
	return jsonResult(res)
}

// register adds the created files to the nearest manifest in one write.
func (t *ScaffoldTool) register(ctx context.Context, res *template.Result) error {
	if len(res.Files) == 0 {
		return nil
	}
	w, err := project.FindWriter(res.Files[0].Path, t.deps.IncludeShared, t.deps.projectOptions()...)
	if err != nil {
		return err
	}
	return t.deps.Queue.Do(w.FilePath(), func() error { return w.Classify(ctx, res.Classifications()) })
}
