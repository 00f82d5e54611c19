// Package template scaffolds C# source files from templates.
package template

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/willibrandon/gocsx/project"
)

var (
	// ErrUnknownTemplate is returned for a template name the registry does not hold.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrFilesExist is returned when scaffolding would overwrite files.
	ErrFilesExist = errors.New("file(s) already exist")
)

// Kind is the file layout a template produces.
type Kind int

// Template kinds.
const (
	KindCS Kind = iota
	KindCshtml
	KindXaml
	KindResw
)

func (k Kind) String() string {
	switch k {
	case KindCS:
		return "cs"
	case KindCshtml:
		return "cshtml"
	case KindXaml:
		return "xaml"
	case KindResw:
		return "resw"
	default:
		return "unknown"
	}
}

// Extensions returns the suffixes of the files the kind produces. A markup
// file comes before its code-behind.
func (k Kind) Extensions() []string {
	switch k {
	case KindCshtml:
		return []string{".cshtml", ".cshtml.cs"}
	case KindXaml:
		return []string{".xaml", ".xaml.cs"}
	case KindResw:
		return []string{".resw"}
	default:
		return []string{".cs"}
	}
}

var (
	webUsings = []string{
		"System",
		"System.Collections.Generic",
		"System.Linq",
		"System.Threading.Tasks",
	}
	xamlUsings = []string{
		"System",
		"System.Collections.Generic",
		"System.Linq",
		"System.Text",
		"System.Threading.Tasks",
		"System.Windows",
		"System.Windows.Controls",
		"System.Windows.Data",
		"System.Windows.Documents",
		"System.Windows.Input",
		"System.Windows.Media",
		"System.Windows.Media.Imaging",
		"System.Windows.Navigation",
		"System.Windows.Shapes",
	}
)

// OptionalUsings returns the usings added unless the project has implicit usings.
func (k Kind) OptionalUsings() []string {
	switch k {
	case KindCS, KindCshtml:
		return slices.Clone(webUsings)
	case KindXaml:
		return slices.Clone(xamlUsings)
	default:
		return nil
	}
}

// Template describes one scaffold.
type Template struct {
	Name           string
	Description    string
	Kind           Kind
	RequiredUsings []string
}

// Extensions returns the suffixes of the files the template creates.
func (t Template) Extensions() []string {
	return t.Kind.Extensions()
}

// ExistingFiles returns the target files that already exist for pathWithoutExt.
func (t Template) ExistingFiles(pathWithoutExt string) []string {
	var existing []string
	for _, ext := range t.Extensions() {
		if _, err := os.Stat(pathWithoutExt + ext); err == nil {
			existing = append(existing, pathWithoutExt+ext)
		}
	}
	return existing
}

// sourceName returns the template file used for a target with extension ext.
func (t Template) sourceName(ext string) string {
	if strings.Count(ext, ".") > 1 {
		return t.Name + ".cs.tmpl"
	}
	return t.Name + ".tmpl"
}

// BuildActionFor returns the build action a scaffolded file is registered under.
func BuildActionFor(path string) project.BuildAction {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".cs"):
		return project.BuildActionCompile
	case strings.HasSuffix(lower, ".xaml"):
		return project.BuildActionPage
	case strings.HasSuffix(lower, ".resw"):
		return project.BuildActionPRIResource
	case strings.HasSuffix(lower, ".cshtml"):
		return project.BuildActionContent
	default:
		return project.BuildActionNone
	}
}

// Registry is the set of known templates.
type Registry struct {
	templates []Template
}

// NewRegistry returns a registry holding templates in the given order.
// A later template replaces an earlier one with the same name.
func NewRegistry(templates ...Template) *Registry {
	r := &Registry{}
	for _, t := range templates {
		r.Add(t)
	}
	return r
}

// DefaultRegistry returns the built-in templates.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Template{Name: "class", Description: "C# class", Kind: KindCS},
		Template{Name: "interface", Description: "C# interface", Kind: KindCS},
		Template{Name: "enum", Description: "C# enum", Kind: KindCS},
		Template{Name: "struct", Description: "C# struct", Kind: KindCS},
		Template{Name: "record", Description: "C# record", Kind: KindCS},
		Template{Name: "controller", Description: "ASP.NET Core MVC controller", Kind: KindCS, RequiredUsings: []string{
			"System.Diagnostics",
			"Microsoft.AspNetCore.Mvc",
			"Microsoft.Extensions.Logging",
		}},
		Template{Name: "apicontroller", Description: "ASP.NET Core API controller", Kind: KindCS, RequiredUsings: []string{
			"Microsoft.AspNetCore.Mvc",
		}},
		Template{Name: "razor_page", Description: "Razor page with page model", Kind: KindCshtml, RequiredUsings: []string{
			"Microsoft.AspNetCore.Mvc",
			"Microsoft.AspNetCore.Mvc.RazorPages",
			"Microsoft.Extensions.Logging",
		}},
		Template{Name: "uwp_page", Description: "UWP page", Kind: KindXaml, RequiredUsings: []string{"Windows.UI.Xaml.Controls"}},
		Template{Name: "uwp_window", Description: "UWP window", Kind: KindXaml, RequiredUsings: []string{"Windows.UI.Xaml"}},
		Template{Name: "uwp_usercontrol", Description: "UWP user control", Kind: KindXaml, RequiredUsings: []string{"Windows.UI.Xaml.Controls"}},
		Template{Name: "uwp_resource", Description: "UWP resource file", Kind: KindResw},
	)
}

// Add registers t.
func (r *Registry) Add(t Template) {
	for i, existing := range r.templates {
		if strings.EqualFold(existing.Name, t.Name) {
			r.templates[i] = t
			return
		}
	}
	r.templates = append(r.templates, t)
}

// Get looks a template up by name, ignoring case.
func (r *Registry) Get(name string) (Template, bool) {
	for _, t := range r.templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Template{}, false
}

// All returns the templates in registration order.
func (r *Registry) All() []Template {
	return slices.Clone(r.templates)
}

// Names returns the template names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for _, t := range r.templates {
		names = append(names, t.Name)
	}
	return names
}
