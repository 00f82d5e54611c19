package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/willibrandon/gocsx/project"
)

func selectableActionNames() []string {
	var names []string
	for _, a := range project.SelectableBuildActions() {
		names = append(names, a.String())
	}
	return names
}

// findWriter locates the manifest for path and reports failures as tool errors.
func (d Deps) findWriter(path string) (*project.Writer, *mcp.CallToolResult) {
	w, err := project.FindWriter(path, d.IncludeShared, d.projectOptions()...)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("cannot find a project file for path '%s'", path))
	}
	return w, nil
}

// SetBuildActionTool handles the set_build_action MCP tool.
type SetBuildActionTool struct {
	deps Deps
}

// NewSetBuildActionTool creates a SetBuildActionTool.
func NewSetBuildActionTool(deps Deps) *SetBuildActionTool {
	return &SetBuildActionTool{deps: deps.withDefaults()}
}

// Definition returns the MCP tool definition for registration.
func (t *SetBuildActionTool) Definition() mcp.Tool {
	return mcp.NewTool("set_build_action",
		mcp.WithDescription(
			"Classify a file in its project manifest, replacing any previous build action. "+
				"Directories and project or solution files are rejected.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The file to classify."),
		),
		mcp.WithString("build_action",
			mcp.Required(),
			mcp.Description("The build action, e.g. Compile, Content, None, EmbeddedResource."),
			mcp.Enum(selectableActionNames()...),
		),
	)
}

// Handle processes the set_build_action tool call.
func (t *SetBuildActionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, errResult := absPath(req, "path")
	if errResult != nil {
		return errResult, nil
	}
	action, err := project.ParseBuildAction(req.GetString("build_action", ""))
	if err != nil || action == project.BuildActionFolder {
		return mcp.NewToolResultError(fmt.Sprintf("'build_action' must be one of %v", selectableActionNames())), nil
	}
	if err := project.CheckItemPath(project.OSFS{}, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, errResult := t.deps.findWriter(path)
	if errResult != nil {
		return errResult, nil
	}

	logger := t.deps.operationLogger("set_build_action")
	err = t.deps.Queue.Do(w.FilePath(), func() error { return w.AddBuildAction(ctx, path, action) })
	if err != nil {
		logger.Warn("Could not set {BuildAction} for {Path}: {Error}", action, path, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("Set {BuildAction} for {Path} in {ManifestPath}", action, path, w.FilePath())
	return mcp.NewToolResultText(fmt.Sprintf("%s is now %s in %s", path, action, w.FilePath())), nil
}

// RemoveBuildActionTool handles the remove_build_action MCP tool.
type RemoveBuildActionTool struct {
	deps Deps
}

// NewRemoveBuildActionTool creates a RemoveBuildActionTool.
func NewRemoveBuildActionTool(deps Deps) *RemoveBuildActionTool {
	return &RemoveBuildActionTool{deps: deps.withDefaults()}
}

// Definition returns the MCP tool definition for registration.
func (t *RemoveBuildActionTool) Definition() mcp.Tool {
	return mcp.NewTool("remove_build_action",
		mcp.WithDescription(
			"Remove a file from its project manifest. For a directory every item below it is removed.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The file or directory, which may already be deleted."),
		),
		mcp.WithBoolean("directory",
			mcp.Description("Treat path as a directory even if it no longer exists."),
		),
	)
}

// Handle processes the remove_build_action tool call.
func (t *RemoveBuildActionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, errResult := absPath(req, "path")
	if errResult != nil {
		return errResult, nil
	}
	forceDir := req.GetBool("directory", false)

	w, errResult := t.deps.findWriter(path)
	if errResult != nil {
		return errResult, nil
	}

	logger := t.deps.operationLogger("remove_build_action")
	err := t.deps.Queue.Do(w.FilePath(), func() error {
		if forceDir {
			return w.RemoveDirectory(ctx, path)
		}
		return w.RemoveBuildAction(ctx, path)
	})
	if err != nil {
		logger.Warn("Could not remove {Path}: {Error}", path, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("Removed {Path} from {ManifestPath}", path, w.FilePath())
	return mcp.NewToolResultText(fmt.Sprintf("removed %s from %s", path, w.FilePath())), nil
}

// RenameBuildActionTool handles the rename_build_action MCP tool.
type RenameBuildActionTool struct {
	deps Deps
}

// NewRenameBuildActionTool creates a RenameBuildActionTool.
func NewRenameBuildActionTool(deps Deps) *RenameBuildActionTool {
	return &RenameBuildActionTool{deps: deps.withDefaults()}
}

// Definition returns the MCP tool definition for registration.
func (t *RenameBuildActionTool) Definition() mcp.Tool {
	return mcp.NewTool("rename_build_action",
		mcp.WithDescription(
			"Move the build action of a renamed file, or of every item below a renamed directory, "+
				"to the new path. The manifest governing the old path is updated.",
		),
		mcp.WithString("old_path",
			mcp.Required(),
			mcp.Description("The path before the rename."),
		),
		mcp.WithString("new_path",
			mcp.Required(),
			mcp.Description("The path after the rename."),
		),
	)
}

// Handle processes the rename_build_action tool call.
func (t *RenameBuildActionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldPath, errResult := absPath(req, "old_path")
	if errResult != nil {
		return errResult, nil
	}
	newPath, errResult := absPath(req, "new_path")
	if errResult != nil {
		return errResult, nil
	}

	w, errResult := t.deps.findWriter(oldPath)
	if errResult != nil {
		return errResult, nil
	}

	logger := t.deps.operationLogger("rename_build_action")
	err := t.deps.Queue.Do(w.FilePath(), func() error { return w.RenameBuildAction(ctx, oldPath, newPath) })
	if err != nil {
		logger.Warn("Could not rename {OldPath} to {NewPath}: {Error}", oldPath, newPath, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("Renamed {OldPath} to {NewPath} in {ManifestPath}", oldPath, newPath, w.FilePath())
	return mcp.NewToolResultText(fmt.Sprintf("renamed %s to %s in %s", oldPath, newPath, w.FilePath())), nil
}
