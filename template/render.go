package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Placeholders recognized in template text.
const (
	PlaceholderNamespace  = "${namespace}"
	PlaceholderClassName  = "${classname}"
	PlaceholderNamespaces = "${namespaces}"
	PlaceholderCursor     = "${cursor}"
)

// Loader reads template sources. Files in an override directory win over
// the built-in ones.
type Loader struct {
	dir string
}

// NewLoader returns a loader that looks in dir first. An empty dir uses only
// the built-in templates.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the source of the template file name, e.g. "class.tmpl".
func (l *Loader) Load(name string) (string, error) {
	if l != nil && l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("could not read template file %q: %w", name, ErrUnknownTemplate)
	}
	return string(data), nil
}

// Position is a 0-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// RenderOptions holds the values substituted into a template.
type RenderOptions struct {
	Namespace string
	ClassName string
	// Usings are written in place of ${namespaces} when IncludeNamespaces is set.
	Usings            []string
	IncludeNamespaces bool
	FileScoped        bool
}

// Rendered is the text of a generated file.
type Rendered struct {
	Text string
	// Cursor is where ${cursor} was, if the template had one.
	Cursor *Position
}

// Render substitutes the placeholders of text. An empty namespace puts the
// type in the global namespace.
func Render(text string, opts RenderOptions) Rendered {
	switch {
	case opts.Namespace == "":
		text = GlobalNamespace(text)
	case opts.FileScoped:
		text = FileScoped(text)
	}

	text = strings.ReplaceAll(text, PlaceholderNamespace, opts.Namespace)
	text = strings.ReplaceAll(text, PlaceholderClassName, opts.ClassName)

	block := ""
	if opts.IncludeNamespaces {
		block = UsingBlock(opts.Usings)
	}
	text = strings.ReplaceAll(text, PlaceholderNamespaces, block)

	var cursor *Position
	if i := strings.Index(text, PlaceholderCursor); i >= 0 {
		before := text[:i]
		line := strings.Count(before, "\n")
		column := len(before) - (strings.LastIndex(before, "\n") + 1)
		cursor = &Position{Line: line, Column: column}
	}
	text = strings.ReplaceAll(text, PlaceholderCursor, "")

	return Rendered{Text: text, Cursor: cursor}
}

var blockNamespaceIndent = regexp.MustCompile(`(?m)^(?:\{|\}| {4})`)

// FileScoped converts a template with a block-scoped namespace into the
// file-scoped form: braces at column 0 and one indent level are removed and
// the namespace declaration gets a semicolon.
func FileScoped(text string) string {
	text = blockNamespaceIndent.ReplaceAllString(text, "")
	return strings.Replace(text, PlaceholderNamespace, PlaceholderNamespace+";", 1)
}

var namespaceDeclaration = regexp.MustCompile(`(?m)(^|\$\{namespaces\})namespace \$\{namespace\}[ \t]*\r?\n(?:\r?\n)?`)

// GlobalNamespace removes the namespace declaration and its block so the
// types land in the global namespace. Qualified references such as
// "${namespace}.${classname}" lose their prefix.
func GlobalNamespace(text string) string {
	if namespaceDeclaration.MatchString(text) {
		text = blockNamespaceIndent.ReplaceAllString(text, "")
		text = namespaceDeclaration.ReplaceAllString(text, "${1}")
		text = strings.TrimRight(text, "\r\n") + "\n"
	}
	return strings.ReplaceAll(text, PlaceholderNamespace+".", "")
}

// SelectUsings returns the using directives for a template. Optional usings
// are left out when the project already imports them implicitly.
func SelectUsings(t Template, implicitUsings bool) []string {
	usings := append([]string(nil), t.RequiredUsings...)
	if !implicitUsings {
		usings = append(usings, t.Kind.OptionalUsings()...)
	}
	return SortUsings(usings)
}

// SortUsings removes duplicates and orders namespaces with System first.
func SortUsings(usings []string) []string {
	seen := make(map[string]bool, len(usings))
	out := make([]string, 0, len(usings))
	for _, u := range usings {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := isSystem(out[i]), isSystem(out[j])
		if si != sj {
			return si
		}
		return out[i] < out[j]
	})
	return out
}

func isSystem(ns string) bool {
	return ns == "System" || strings.HasPrefix(ns, "System.")
}

// UsingBlock renders using directives one per line followed by a blank line.
func UsingBlock(usings []string) string {
	if len(usings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, u := range usings {
		fmt.Fprintf(&b, "using %s;\n", u)
	}
	b.WriteString("\n")
	return b.String()
}
