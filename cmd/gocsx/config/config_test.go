package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/gocsx/project"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// isolate keeps the real user config out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.IncludeNamespaces)
	assert.False(t, cfg.UseFileScopedNamespace)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.IncludeShared)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoad_NearestFileAbove(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `includeNamespaces: false
useFileScopedNamespace: true
formatCommand: [dotnet, csharpier]
templatesDir: templates
workspaceRoots: [src]
watch:
  debounce: 250ms
  includeShared: false
  buildActions:
    .json: Content
    resx: EmbeddedResource
tracing:
  exporter: stdout
metrics:
  addr: ":9090"
`)
	dir := filepath.Join(root, "src", "App")
	require.NoError(t, os.MkdirAll(dir, 0755))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)
	assert.False(t, cfg.IncludeNamespaces)
	assert.True(t, cfg.UseFileScopedNamespace)
	assert.Equal(t, []string{"dotnet", "csharpier"}, cfg.FormatCommand)
	assert.Equal(t, filepath.Join(root, "templates"), cfg.TemplatesDir)
	assert.Equal(t, []string{filepath.Join(root, "src")}, cfg.WorkspaceRoots)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.False(t, cfg.Watch.IncludeShared)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	actions, err := cfg.ExtensionActions()
	require.NoError(t, err)
	assert.Equal(t, map[string]project.BuildAction{
		".json": project.BuildActionContent,
		"resx":  project.BuildActionEmbeddedResource,
	}, actions)
}

func TestLoad_UserConfigFallback(t *testing.T) {
	isolate(t)
	writeFile(t, UserConfigPath(), "includeNamespaces: false\n")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, UserConfigPath(), cfg.Path)
	assert.False(t, cfg.IncludeNamespaces)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "useFileScopedNamespace: false\ntracing:\n  exporter: stdout\n")
	writeFile(t, filepath.Join(dir, ".env"), "GOCSX_FILE_SCOPED_NAMESPACE=true\nGOCSX_METRICS_ADDR=:2112\nGOCSX_TRACING_EXPORTER=otlp\n")
	// The process environment wins over .env.
	t.Setenv("GOCSX_TRACING_EXPORTER", "none")
	t.Setenv("GOCSX_WATCH_DEBOUNCE", "1s")
	t.Setenv("GOCSX_FORMAT_COMMAND", "dotnet format whitespace --include")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.True(t, cfg.UseFileScopedNamespace)
	assert.Equal(t, ":2112", cfg.Metrics.Addr)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{"dotnet", "format", "whitespace", "--include"}, cfg.FormatCommand)
}

func TestLoad_EnvPathsRelativeToWorkingDirectory(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	other := filepath.Join(t.TempDir(), "abs")
	t.Setenv("GOCSX_WORKSPACE_ROOTS", "src"+string(filepath.ListSeparator)+other)
	t.Setenv("GOCSX_TEMPLATES_DIR", filepath.Join("build", "templates"))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "src"), other}, cfg.WorkspaceRoots)
	assert.Equal(t, filepath.Join(dir, "build", "templates"), cfg.TemplatesDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		file string
		env  map[string]string
	}{
		"yaml syntax":    {file: "watch: [\n"},
		"exporter":       {file: "tracing:\n  exporter: jaeger\n"},
		"negative":       {file: "watch:\n  debounce: -1s\n"},
		"build action":   {file: "watch:\n  buildActions:\n    .txt: Folder\n"},
		"env bool":       {env: map[string]string{"GOCSX_INCLUDE_NAMESPACES": "maybe"}},
		"env duration":   {env: map[string]string{"GOCSX_WATCH_DEBOUNCE": "soon"}},
		"unknown action": {file: "watch:\n  buildActions:\n    .txt: Bogus\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, FileName), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(dir, "")
			assert.Error(t, err)
		})
	}
}
