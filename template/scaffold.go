package template

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/willibrandon/gocsx/namespace"
	"github.com/willibrandon/gocsx/observability"
	"github.com/willibrandon/gocsx/project"
)

// Scaffolder creates source files from templates.
type Scaffolder struct {
	registry          *Registry
	loader            *Loader
	resolver          *namespace.Resolver
	includeNamespaces bool
	fileScoped        bool
	formatCommand     []string
	logger            observability.Logger
	projectOpts       []project.Option
}

// ScaffoldOption configures a Scaffolder.
type ScaffoldOption func(*Scaffolder)

// WithRegistry sets the templates that can be scaffolded.
func WithRegistry(r *Registry) ScaffoldOption {
	return func(s *Scaffolder) { s.registry = r }
}

// WithTemplatesDir makes files in dir override the built-in templates.
func WithTemplatesDir(dir string) ScaffoldOption {
	return func(s *Scaffolder) { s.loader = NewLoader(dir) }
}

// WithResolver sets the namespace resolver.
func WithResolver(r *namespace.Resolver) ScaffoldOption {
	return func(s *Scaffolder) { s.resolver = r }
}

// WithIncludeNamespaces controls whether using directives are written.
func WithIncludeNamespaces(on bool) ScaffoldOption {
	return func(s *Scaffolder) { s.includeNamespaces = on }
}

// WithFileScopedNamespace writes file-scoped namespaces into projects that
// target .NET 6 or later.
func WithFileScopedNamespace(on bool) ScaffoldOption {
	return func(s *Scaffolder) { s.fileScoped = on }
}

// WithFormatCommand sets a command run on every generated file. The file
// path is appended as the last argument.
func WithFormatCommand(argv ...string) ScaffoldOption {
	return func(s *Scaffolder) { s.formatCommand = argv }
}

// WithScaffoldLogger sets the logger.
func WithScaffoldLogger(logger observability.Logger) ScaffoldOption {
	return func(s *Scaffolder) { s.logger = logger }
}

// WithScaffoldProjectOptions passes options to the manifest readers.
func WithScaffoldProjectOptions(opts ...project.Option) ScaffoldOption {
	return func(s *Scaffolder) { s.projectOpts = opts }
}

// NewScaffolder returns a scaffolder using the built-in templates.
func NewScaffolder(opts ...ScaffoldOption) *Scaffolder {
	s := &Scaffolder{
		registry:          DefaultRegistry(),
		loader:            NewLoader(""),
		includeNamespaces: true,
		logger:            observability.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = namespace.NewResolver(
			namespace.WithLogger(s.logger),
			namespace.WithProjectOptions(s.projectOpts...),
		)
	}
	return s
}

// Registry returns the templates the scaffolder knows.
func (s *Scaffolder) Registry() *Registry {
	return s.registry
}

// Request names what to scaffold and where.
type Request struct {
	Template  string
	Directory string
	Name      string
}

// File is one generated file.
type File struct {
	Path        string              `json:"path"`
	BuildAction project.BuildAction `json:"buildAction"`
	Cursor      *Position           `json:"cursor,omitempty"`
}

// Result describes a completed scaffold.
type Result struct {
	Namespace string `json:"namespace"`
	Files     []File `json:"files"`
}

// Classifications returns the build action of every created file.
func (r *Result) Classifications() []project.Classification {
	items := make([]project.Classification, 0, len(r.Files))
	for _, f := range r.Files {
		items = append(items, project.Classification{Path: f.Path, Action: f.BuildAction})
	}
	return items
}

// Scaffold renders the requested template into req.Directory. Existing files
// are never overwritten.
func (s *Scaffolder) Scaffold(ctx context.Context, req Request) (res *Result, err error) {
	t, ok := s.registry.Get(req.Template)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, req.Template)
	}

	name := strings.TrimSpace(req.Name)
	if strings.HasSuffix(strings.ToLower(name), ".cs") {
		name = name[:len(name)-len(".cs")]
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, &project.ArgumentError{Name: "name"}
	}
	if req.Directory == "" {
		return nil, &project.ArgumentError{Name: "directory"}
	}

	dir, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(dir, name)

	ctx, span := observability.StartScaffoldSpan(ctx, t.Name, base)
	defer func() { observability.EndSpanWithError(span, err) }()

	if existing := t.ExistingFiles(base); len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrFilesExist, strings.Join(existing, ", "))
	}

	ns := s.resolver.Resolve(ctx, base+".cs")
	implicitUsings, net6 := s.projectFeatures(ctx, base)

	type output struct {
		path string
		text Rendered
	}
	var outputs []output
	for _, ext := range t.Extensions() {
		source, err := s.loader.Load(t.sourceName(ext))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{
			path: base + ext,
			text: Render(source, RenderOptions{
				Namespace:         ns,
				ClassName:         name,
				Usings:            SelectUsings(t, implicitUsings && net6),
				IncludeNamespaces: s.includeNamespaces,
				FileScoped:        s.fileScoped && net6 && strings.HasSuffix(ext, ".cs"),
			}),
		})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	res = &Result{Namespace: ns}
	// Code-behind first so a markup file never exists without it.
	for i := len(outputs) - 1; i >= 0; i-- {
		o := outputs[i]
		if err := writeNewFile(o.path, o.text.Text); err != nil {
			return nil, err
		}
		s.logger.Info("Created {Path} from template {Template}", o.path, t.Name)
		s.format(ctx, o.path)
	}
	for _, o := range outputs {
		res.Files = append(res.Files, File{
			Path:        o.path,
			BuildAction: BuildActionFor(o.path),
			Cursor:      o.text.Cursor,
		})
	}

	observability.ScaffoldedFilesTotal.WithLabelValues(t.Name).Add(float64(len(res.Files)))
	return res, nil
}

// projectFeatures reports whether the nearest csproj has implicit usings and
// whether it targets .NET 6 or later.
func (s *Scaffolder) projectFeatures(ctx context.Context, base string) (implicitUsings, net6 bool) {
	r, err := project.FindCsprojReader(base, append([]project.Option{project.WithLogger(s.logger)}, s.projectOpts...)...)
	if err != nil {
		return false, false
	}
	atLeast, ok := r.IsTargetFrameworkAtLeastNet6(ctx)
	return r.HasImplicitUsings(ctx), ok && atLeast
}

func writeNewFile(path, text string) error {
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile creates the file through os.CreateTemp (0600).
	if err := os.Chmod(path, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

func (s *Scaffolder) format(ctx context.Context, path string) {
	if len(s.formatCommand) == 0 {
		return
	}
	args := append(append([]string(nil), s.formatCommand[1:]...), path)
	cmd := exec.CommandContext(ctx, s.formatCommand[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		s.logger.Warn("Format command {Command} failed for {Path}: {Error} {Stderr}",
			s.formatCommand[0], path, err, strings.TrimSpace(stderr.String()))
	}
}
