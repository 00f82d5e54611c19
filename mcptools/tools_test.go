package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gocsx/namespace"
	"github.com/willibrandon/gocsx/project"
	"github.com/willibrandon/gocsx/template"
)

// --- Test helpers ---

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func request(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func setupProject(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	manifest := filepath.Join(root, "App.csproj")
	writeFile(t, manifest, `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <RootNamespace>App</RootNamespace>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="Old.cs" />
  </ItemGroup>
</Project>
`)
	return root, manifest
}

// --- resolve_namespace ---

func TestResolveNamespaceTool_Handle(t *testing.T) {
	root, manifest := setupProject(t)
	tool := NewResolveNamespaceTool(namespace.NewResolver())

	result, err := tool.Handle(context.Background(), request(map[string]any{"file": filepath.Join(root, "Models", "User.cs")}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))

	var res namespace.Resolution
	require.NoError(t, json.Unmarshal([]byte(getResultText(result)), &res))
	assert.Equal(t, namespace.Resolution{Namespace: "App.Models", Source: namespace.SourceCsproj, ManifestPath: manifest}, res)
}

func TestResolveNamespaceTool_MissingFile(t *testing.T) {
	tool := NewResolveNamespaceTool(namespace.NewResolver())
	result, err := tool.Handle(context.Background(), request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "'file' is required")
}

// --- project_info ---

func TestProjectInfoTool_Handle(t *testing.T) {
	root, manifest := setupProject(t)
	tool := NewProjectInfoTool(Deps{})

	result, err := tool.Handle(context.Background(), request(map[string]any{"path": root}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))

	var info project.Info
	require.NoError(t, json.Unmarshal([]byte(getResultText(result)), &info))
	assert.Equal(t, manifest, info.ManifestPath)
	assert.Equal(t, "App", info.RootNamespace)
	assert.True(t, info.Net6OrLater)
	assert.Equal(t, 1, info.ItemCount)
}

func TestProjectInfoTool_NotFound(t *testing.T) {
	tool := NewProjectInfoTool(Deps{})
	result, err := tool.Handle(context.Background(), request(map[string]any{"path": t.TempDir()}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "no project manifest found")
}

// --- build actions ---

func TestSetBuildActionTool_Handle(t *testing.T) {
	root, manifest := setupProject(t)
	file := filepath.Join(root, "wwwroot", "site.css")
	writeFile(t, file, "")
	tool := NewSetBuildActionTool(Deps{})

	result, err := tool.Handle(context.Background(), request(map[string]any{"path": file, "build_action": "content"}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))
	assert.Contains(t, readFile(t, manifest), `<Content Include="wwwroot/site.css" />`)
}

func TestSetBuildActionTool_Rejections(t *testing.T) {
	root, manifest := setupProject(t)
	before := readFile(t, manifest)
	tool := NewSetBuildActionTool(Deps{})

	cases := map[string]map[string]any{
		"folder action":    {"path": filepath.Join(root, "A.cs"), "build_action": "Folder"},
		"unknown action":   {"path": filepath.Join(root, "A.cs"), "build_action": "Bogus"},
		"directory":        {"path": root, "build_action": "None"},
		"manifest":         {"path": manifest, "build_action": "None"},
		"no manifest":      {"path": filepath.Join(t.TempDir(), "A.cs"), "build_action": "None"},
		"missing argument": {"build_action": "None"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), request(args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
	assert.Equal(t, before, readFile(t, manifest))
}

func TestRemoveAndRenameBuildActionTools(t *testing.T) {
	root, manifest := setupProject(t)
	ctx := context.Background()

	rename := NewRenameBuildActionTool(Deps{})
	result, err := rename.Handle(ctx, request(map[string]any{
		"old_path": filepath.Join(root, "Old.cs"),
		"new_path": filepath.Join(root, "Models", "New.cs"),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))
	assert.Contains(t, readFile(t, manifest), `<Compile Include="Models/New.cs" />`)

	remove := NewRemoveBuildActionTool(Deps{})
	result, err = remove.Handle(ctx, request(map[string]any{"path": filepath.Join(root, "Models"), "directory": true}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))
	assert.NotContains(t, readFile(t, manifest), "<ItemGroup>")
}

func TestRenameBuildActionTool_Directory(t *testing.T) {
	root, manifest := setupProject(t)
	writeFile(t, filepath.Join(root, "Views", "Home.cs"), "")
	writeFile(t, manifest, `<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <Compile Include="Views/Home.cs" />
  </ItemGroup>
</Project>
`)
	require.NoError(t, os.Rename(filepath.Join(root, "Views"), filepath.Join(root, "Pages")))

	tool := NewRenameBuildActionTool(Deps{})
	result, err := tool.Handle(context.Background(), request(map[string]any{
		"old_path": filepath.Join(root, "Views"),
		"new_path": filepath.Join(root, "Pages"),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))
	assert.Contains(t, readFile(t, manifest), `<Compile Include="Pages/Home.cs" />`)
}

// --- scaffold ---

func TestScaffoldTool_HandleAndRegister(t *testing.T) {
	root, manifest := setupProject(t)
	tool := NewScaffoldTool(template.NewScaffolder(), Deps{})

	result, err := tool.Handle(context.Background(), request(map[string]any{
		"template":  "uwp_page",
		"directory": filepath.Join(root, "Views"),
		"name":      "MainPage",
		"register":  true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, getResultText(result))

	var res template.Result
	require.NoError(t, json.Unmarshal([]byte(getResultText(result)), &res))
	assert.Equal(t, "App.Views", res.Namespace)
	require.Len(t, res.Files, 2)
	assert.Equal(t, project.BuildActionPage, res.Files[0].BuildAction)

	content := readFile(t, manifest)
	assert.Contains(t, content, `<Page Include="Views/MainPage.xaml" SubType="Designer" Generator="MSBuild:Compile" />`)
	assert.Contains(t, content, `<Compile Include="Views/MainPage.xaml.cs" DependentUpon="MainPage.xaml" />`)
}

func TestScaffoldTool_UserErrors(t *testing.T) {
	root, _ := setupProject(t)
	tool := NewScaffoldTool(template.NewScaffolder(), Deps{})
	ctx := context.Background()

	result, err := tool.Handle(ctx, request(map[string]any{"template": "nope", "directory": root, "name": "A"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	args := map[string]any{"template": "class", "directory": root, "name": "A"}
	result, err = tool.Handle(ctx, request(args))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = tool.Handle(ctx, request(args))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getResultText(result), "already exist")
}

// --- server ---

func TestNewServer_ListsTools(t *testing.T) {
	s := NewServer("test", namespace.NewResolver(), template.NewScaffolder(), Deps{})

	msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{
		"resolve_namespace",
		"project_info",
		"set_build_action",
		"remove_build_action",
		"rename_build_action",
		"scaffold",
	} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
