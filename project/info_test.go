package project

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_Csproj(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "App.csproj")
	writeFile(t, manifest, `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <RootNamespace>App</RootNamespace>
    <TargetFramework>net7.0</TargetFramework>
    <ImplicitUsings>enable</ImplicitUsings>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="A.cs" />
    <None Include="readme.md" />
  </ItemGroup>
</Project>`)
	writeFile(t, filepath.Join(root, "src", "B.cs"), "")

	want := &Info{
		ManifestPath:    manifest,
		Kind:            "csproj",
		RootNamespace:   "App",
		TargetFramework: "net7.0",
		Net6OrLater:     true,
		ImplicitUsings:  true,
		ItemCount:       2,
	}
	for _, path := range []string{root, filepath.Join(root, "src"), filepath.Join(root, "src", "B.cs"), manifest} {
		info, err := Describe(context.Background(), path)
		require.NoError(t, err, path)
		assert.Equal(t, want, info, path)
	}
}

func TestDescribe_ProjectJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "project.json"), `{"tooling": {"defaultNamespace": "Legacy"}}`)

	info, err := Describe(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, &Info{ManifestPath: filepath.Join(root, "project.json"), Kind: "project.json", RootNamespace: "Legacy"}, info)
}

func TestDescribe_NotFound(t *testing.T) {
	_, err := Describe(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}
