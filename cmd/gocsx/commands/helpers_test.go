package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/willibrandon/gocsx/cmd/gocsx/output"
)

const appManifest = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <RootNamespace>App</RootNamespace>
    <TargetFramework>net8.0</TargetFramework>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="Old.cs" />
  </ItemGroup>
</Project>
`

// fakePrompter answers prompts from queued values. An exhausted queue
// behaves like Ctrl-C.
type fakePrompter struct {
	inputs  []string
	choices []string
	labels  []string
}

func (f *fakePrompter) Input(label, def string) (string, bool, error) {
	f.labels = append(f.labels, label)
	if len(f.inputs) == 0 {
		return "", false, nil
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	return v, true, nil
}

func (f *fakePrompter) Choose(label string, options []string) (string, bool, error) {
	f.labels = append(f.labels, label)
	if len(f.choices) == 0 {
		return "", false, nil
	}
	v := f.choices[0]
	f.choices = f.choices[1:]
	return v, true, nil
}

type testEnv struct {
	*Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	var out, errOut bytes.Buffer
	console := output.NewConsole(&out, &errOut, output.VerbosityNormal)
	console.SetColors(false)
	env := NewEnv(console)
	env.NonInteractive = true
	return &testEnv{Env: env, out: &out, errOut: &errOut}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(data)
}

// setupProject creates App.csproj in a temp dir and returns both paths.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	manifest := filepath.Join(root, "App.csproj")
	writeFile(t, manifest, appManifest)
	return root, manifest
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}
