// Package mcptools exposes manifest and namespace operations as MCP tools.
//
// Each tool is a struct holding its dependencies with a Definition for
// registration and a Handle compatible with mcp-go's tool handler signature.
package mcptools

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
	"github.com/willibrandon/gocsx/watch"
)

// Deps are the services shared by the tools.
type Deps struct {
	Logger observability.Logger
	// Queue serializes writes per manifest across tool calls.
	Queue         *watch.PathQueue
	IncludeShared bool
	ProjectOpts   []project.Option
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = observability.NewNullLogger()
	}
	if d.Queue == nil {
		d.Queue = watch.NewPathQueue()
	}
	return d
}

func (d Deps) projectOptions() []project.Option {
	return append([]project.Option{project.WithLogger(d.Logger)}, d.ProjectOpts...)
}

// operationLogger tags the log events of one tool call.
func (d Deps) operationLogger(tool string) observability.Logger {
	return d.Logger.ForContext("Tool", tool).ForContext("OperationId", uuid.NewString())
}

// absPath reads a required path argument.
func absPath(req mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	p := strings.TrimSpace(req.GetString(name, ""))
	if p == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", name))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return abs, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
