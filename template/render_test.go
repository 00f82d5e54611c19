package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classSource = `${namespaces}namespace ${namespace}
{
    public class ${classname}
    {
        ${cursor}
    }
}
`

func TestRender_BlockNamespace(t *testing.T) {
	out := Render(classSource, RenderOptions{
		Namespace:         "App.Models",
		ClassName:         "User",
		Usings:            []string{"System", "System.Linq"},
		IncludeNamespaces: true,
	})

	assert.Equal(t, "using System;\n"+
		"using System.Linq;\n"+
		"\n"+
		"namespace App.Models\n"+
		"{\n"+
		"    public class User\n"+
		"    {\n"+
		"        \n"+
		"    }\n"+
		"}\n", out.Text)
	require.NotNil(t, out.Cursor)
	assert.Equal(t, Position{Line: 7, Column: 8}, *out.Cursor)
}

func TestRender_WithoutNamespaces(t *testing.T) {
	out := Render(classSource, RenderOptions{
		Namespace: "App",
		ClassName: "User",
		Usings:    []string{"System"},
	})

	assert.NotContains(t, out.Text, "using")
	assert.NotContains(t, out.Text, "${")
	assert.Equal(t, Position{Line: 4, Column: 8}, *out.Cursor)
}

func TestRender_FileScoped(t *testing.T) {
	out := Render(classSource, RenderOptions{
		Namespace:  "App",
		ClassName:  "User",
		FileScoped: true,
	})

	assert.Equal(t, "namespace App;\n"+
		"\n"+
		"public class User\n"+
		"{\n"+
		"    \n"+
		"}\n"+
		"\n", out.Text)
	assert.Equal(t, Position{Line: 4, Column: 4}, *out.Cursor)
}

func TestRender_GlobalNamespace(t *testing.T) {
	for _, fileScoped := range []bool{false, true} {
		out := Render(classSource, RenderOptions{
			ClassName:         "User",
			Usings:            []string{"System"},
			IncludeNamespaces: true,
			FileScoped:        fileScoped,
		})

		assert.Equal(t, "using System;\n"+
			"\n"+
			"public class User\n"+
			"{\n"+
			"    \n"+
			"}\n", out.Text)
		require.NotNil(t, out.Cursor)
		assert.Equal(t, Position{Line: 4, Column: 4}, *out.Cursor)
	}
}

func TestRender_GlobalNamespaceMarkup(t *testing.T) {
	out := Render(`<Page x:Class="${namespace}.${classname}" />`+"\n", RenderOptions{ClassName: "MainPage"})
	assert.Equal(t, `<Page x:Class="MainPage" />`+"\n", out.Text)
}

func TestRender_NoCursor(t *testing.T) {
	out := Render("<root />\n", RenderOptions{})
	assert.Nil(t, out.Cursor)
	assert.Equal(t, "<root />\n", out.Text)
}

func TestSortUsings(t *testing.T) {
	got := SortUsings([]string{
		"Microsoft.Extensions.Logging",
		"System.Linq",
		"Microsoft.AspNetCore.Mvc",
		"System",
		"System.Linq",
		" ",
		"Systematic",
	})
	assert.Equal(t, []string{
		"System",
		"System.Linq",
		"Microsoft.AspNetCore.Mvc",
		"Microsoft.Extensions.Logging",
		"Systematic",
	}, got)
}

func TestSelectUsings(t *testing.T) {
	controller, ok := DefaultRegistry().Get("controller")
	require.True(t, ok)

	assert.Equal(t, []string{
		"System.Diagnostics",
		"Microsoft.AspNetCore.Mvc",
		"Microsoft.Extensions.Logging",
	}, SelectUsings(controller, true))

	all := SelectUsings(controller, false)
	assert.Equal(t, "System", all[0])
	assert.Contains(t, all, "System.Threading.Tasks")
	assert.Contains(t, all, "Microsoft.AspNetCore.Mvc")

	resource, _ := DefaultRegistry().Get("uwp_resource")
	assert.Empty(t, SelectUsings(resource, false))
}

func TestUsingBlock(t *testing.T) {
	assert.Equal(t, "", UsingBlock(nil))
	assert.Equal(t, "using System;\n\n", UsingBlock([]string{"System"}))
}

func TestLoader(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		source, err := NewLoader("").Load("class.tmpl")
		require.NoError(t, err)
		assert.Contains(t, source, "public class ${classname}")
	})

	t.Run("override directory wins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "class.tmpl"), []byte("custom ${classname}\n"), 0644))

		loader := NewLoader(dir)
		source, err := loader.Load("class.tmpl")
		require.NoError(t, err)
		assert.Equal(t, "custom ${classname}\n", source)

		source, err = loader.Load("enum.tmpl")
		require.NoError(t, err)
		assert.Contains(t, source, "enum ${classname}")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewLoader("").Load("missing.tmpl")
		assert.ErrorIs(t, err, ErrUnknownTemplate)
	})
}

func TestDefaultRegistry_EveryTemplateHasSources(t *testing.T) {
	loader := NewLoader("")
	for _, tmpl := range DefaultRegistry().All() {
		for _, ext := range tmpl.Extensions() {
			_, err := loader.Load(tmpl.sourceName(ext))
			assert.NoError(t, err, "%s%s", tmpl.Name, ext)
		}
	}
}
